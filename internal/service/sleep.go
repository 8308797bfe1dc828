// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/wneessen/weather-forecast/internal/logger"
)

const (
	logindManager   = "org.freedesktop.login1.Manager"
	prepareForSleep = "PrepareForSleep"

	resumeDebounce     = 2 * time.Second
	networkWakeupDelay = 10 * time.Second
	busRetryDelay      = 5 * time.Second
	signalBufferSize   = 8
)

// resumeMonitor calls onResume whenever logind reports that the system woke up from sleep.
type resumeMonitor struct {
	logger     *logger.Logger
	onResume   func(context.Context)
	lastResume atomic.Int64
}

func newResumeMonitor(log *logger.Logger, onResume func(context.Context)) *resumeMonitor {
	return &resumeMonitor{logger: log, onResume: onResume}
}

// Run listens on the system bus until ctx is canceled. Lost connections are re-established.
func (m *resumeMonitor) Run(ctx context.Context) {
	for ctx.Err() == nil {
		conn, signals, err := m.subscribe()
		if err != nil {
			m.logger.Debug("failed to listen for resume signals", logger.Err(err))
			m.wait(ctx, busRetryDelay)
			continue
		}
		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		m.logger.Debug("listening for resume signals", slog.String("interface", logindManager),
			slog.String("member", prepareForSleep))

		m.consume(ctx, signals)

		stop()
		conn.RemoveSignal(signals)
		_ = conn.Close()
		m.wait(ctx, busRetryDelay)
	}
}

func (m *resumeMonitor) subscribe() (*dbus.Conn, chan *dbus.Signal, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, nil, err
	}
	if err = conn.AddMatchSignal(dbus.WithMatchInterface(logindManager), dbus.WithMatchMember(prepareForSleep)); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	signals := make(chan *dbus.Signal, signalBufferSize)
	conn.Signal(signals)
	return conn, signals, nil
}

func (m *resumeMonitor) consume(ctx context.Context, signals <-chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			m.process(ctx, sig)
		}
	}
}

// process handles a PrepareForSleep signal. Its single boolean argument is false once the
// system has resumed. Resumes closer together than resumeDebounce are handled once.
func (m *resumeMonitor) process(ctx context.Context, sig *dbus.Signal) {
	if len(sig.Body) != 1 {
		return
	}
	if sleeping, ok := sig.Body[0].(bool); !ok || sleeping {
		return
	}

	now := time.Now().UnixNano()
	last := m.lastResume.Load()
	if now-last < int64(resumeDebounce) || !m.lastResume.CompareAndSwap(last, now) {
		return
	}

	// the network is usually not up right after resume
	if !m.wait(ctx, networkWakeupDelay) {
		return
	}
	m.logger.Debug("resumed from sleep, refreshing forecasts")
	m.onResume(ctx)
}

// wait returns false if ctx was canceled before d elapsed.
func (m *resumeMonitor) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
