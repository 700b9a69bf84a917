package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"
)

// ParseClockTime は時刻文字列（HH:MM）を時間と分に解析する
func ParseClockTime(timeStr string) (int, int, error) {
	if timeStr == "" {
		return 0, 0, errors.New("empty time string")
	}

	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return 0, 0, errors.New("invalid time format")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.New("invalid hour")
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.New("invalid minute")
	}

	return hour, minute, nil
}

// NextDailyRun は now より後で最初に来る loc の hour:minute を返す
func NextDailyRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}
	return next
}

// RunEvery は ctx がキャンセルされるまで interval ごとに fn を実行する
func RunEvery(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		log.Printf("%s: invalid interval %s, scheduler disabled", name, interval)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// RunDailyAt は毎日 loc の clock（HH:MM）に fn を実行する
func RunDailyAt(ctx context.Context, name string, clock string, loc *time.Location, fn func(context.Context)) error {
	hour, minute, err := ParseClockTime(clock)
	if err != nil {
		return err
	}

	for {
		next := NextDailyRun(time.Now(), hour, minute, loc)
		log.Printf("%s: next run at %s", name, next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			fn(ctx)
		}
	}
}
