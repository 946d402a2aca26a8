package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		enabled zapcore.Level
		wantErr bool
	}{
		{env: "local", enabled: zapcore.DebugLevel},
		{env: "prod", enabled: zapcore.InfoLevel},
		{env: "prod", level: "warn", enabled: zapcore.WarnLevel},
		{env: "test", enabled: zapcore.WarnLevel},
		{env: "staging", wantErr: true},
		{env: "local", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s should be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s should be disabled", tt.enabled-1)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected nop logger fallback")
	}
	l := zap.NewExample()
	if got := FromContext(ContextWithLogger(context.Background(), l)); got != l {
		t.Error("expected stored logger")
	}
}

func TestWith_ExtendsScopedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core).With(zap.String("request_id", "r1")))

	ctx, l := With(ctx, zap.String("rpc", "GetPrizesByCategory"))
	l.Info("first")
	FromContext(ctx).Info("second")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		fields := e.ContextMap()
		if fields["request_id"] != "r1" || fields["rpc"] != "GetPrizesByCategory" {
			t.Errorf("%s: fields = %v", e.Message, fields)
		}
	}
}

func TestWith_NoScopedLogger(t *testing.T) {
	ctx, l := With(context.Background(), zap.String("layout", "prize"))
	if l == nil || FromContext(ctx) != l {
		t.Fatal("expected a stored nop logger")
	}
}
