package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
)

type startStopModule struct {
	id       ModuleID
	startErr error
	log      *[]string
}

func (m *startStopModule) ModuleInfo() ModuleInfo {
	return ModuleInfo{ID: m.id, New: func() Module { return m }}
}

func (m *startStopModule) Start() error {
	*m.log = append(*m.log, "start "+string(m.id))
	return m.startErr
}

func (m *startStopModule) Stop(context.Context) error {
	*m.log = append(*m.log, "stop "+string(m.id))
	return nil
}

func newTestApp() *App {
	return NewApp(NewAppContext(slog.New(slog.NewTextHandler(io.Discard, nil)), "/data"))
}

func TestApp_StartStopOrder(t *testing.T) {
	var log []string
	app := newTestApp()
	app.appendModule("gateway.http", &startStopModule{id: "gateway.http", log: &log})
	app.appendModule("channel.line", &startStopModule{id: "channel.line", log: &log})

	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	app.Stop()

	want := []string{"start gateway.http", "start channel.line", "stop channel.line", "stop gateway.http"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
}

func TestApp_StartFailureRollsBack(t *testing.T) {
	var log []string
	boom := errors.New("bind failed")
	app := newTestApp()
	app.appendModule("gateway.http", &startStopModule{id: "gateway.http", log: &log})
	app.appendModule("channel.line", &startStopModule{id: "channel.line", startErr: boom, log: &log})

	err := app.Start()
	var le *LifecycleError
	if !errors.As(err, &le) || le.Phase != PhaseStart || le.Module != "channel.line" {
		t.Fatalf("Start() error = %v, want start LifecycleError for channel.line", err)
	}
	if !errors.Is(err, boom) {
		t.Error("error should wrap the module error")
	}

	want := []string{"start gateway.http", "start channel.line", "stop gateway.http"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
}

func TestApp_Module(t *testing.T) {
	var log []string
	app := newTestApp()
	mod := &startStopModule{id: "gateway.http", log: &log}
	app.appendModule("gateway.http", mod)

	got, ok := app.Module("gateway.http")
	if !ok || got != mod {
		t.Errorf("Module() = %v, %v", got, ok)
	}
	if _, ok := app.Module("channel.line"); ok {
		t.Error("Module() should report false for an unloaded module")
	}
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	var log []string
	app := newTestApp()
	app.appendModule("gateway.http", &startStopModule{id: "gateway.http", log: &log})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"start gateway.http", "stop gateway.http"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
}

func TestRegisterModule_Panics(t *testing.T) {
	t.Cleanup(resetRegistry)

	tests := []struct {
		name string
		mod  Module
	}{
		{"empty id", &startStopModule{}},
		{"nil constructor", nilNewModule{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			RegisterModule(tt.mod)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		var log []string
		RegisterModule(&startStopModule{id: "test.dup", log: &log})
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		RegisterModule(&startStopModule{id: "test.dup", log: &log})
	})
}

type nilNewModule struct{}

func (nilNewModule) ModuleInfo() ModuleInfo { return ModuleInfo{ID: "test.nilnew"} }

func TestGetModules_Sorted(t *testing.T) {
	t.Cleanup(resetRegistry)

	var log []string
	for _, id := range []ModuleID{"gateway.http", "channel.line", "a.first"} {
		RegisterModule(&startStopModule{id: id, log: &log})
	}
	var ids []ModuleID
	for _, info := range GetModules() {
		ids = append(ids, info.ID)
	}
	want := []ModuleID{"a.first", "channel.line", "gateway.http"}
	if !slices.Equal(ids, want) {
		t.Errorf("GetModules() = %v, want %v", ids, want)
	}
}
