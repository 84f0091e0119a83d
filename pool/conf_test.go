package pool

import (
	"testing"

	"github.com/tsellis/gather/internal/sysinfo"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := newConfig()

	want := sysinfo.WorkerCount(sysinfo.Available())
	if cfg.workerCount != want {
		t.Errorf("expected default worker count %d, got %d", want, cfg.workerCount)
	}
	if cfg.queueSize != cfg.workerCount {
		t.Errorf("expected queue size to default to worker count %d, got %d", cfg.workerCount, cfg.queueSize)
	}
	if cfg.limiter != nil {
		t.Error("expected no throughput limiter by default")
	}
	if cfg.codec != Gob {
		t.Errorf("expected Gob as the default codec, got %q", cfg.codec.Name())
	}
}

func TestNewConfig_Options(t *testing.T) {
	cfg := newConfig(
		WithWorkerCount(7),
		WithQueueSize(32),
		WithThroughput(100, 10),
		WithCodec(JSON),
	)

	if cfg.workerCount != 7 {
		t.Errorf("expected 7 workers, got %d", cfg.workerCount)
	}
	if cfg.queueSize != 32 {
		t.Errorf("expected queue size 32, got %d", cfg.queueSize)
	}
	if cfg.limiter == nil {
		t.Error("expected a throughput limiter")
	}
	if cfg.codec != JSON {
		t.Errorf("expected JSON codec, got %q", cfg.codec.Name())
	}
}

func TestNewConfig_IgnoresInvalidValues(t *testing.T) {
	cfg := newConfig(
		WithWorkerCount(0),
		WithWorkerCount(-3),
		WithQueueSize(0),
		WithQueueSize(-1),
		WithThroughput(0, 5),
		WithThroughput(5, 0),
		WithCodec(nil),
	)

	want := sysinfo.WorkerCount(sysinfo.Available())
	if cfg.workerCount != want {
		t.Errorf("invalid worker counts should be ignored, got %d", cfg.workerCount)
	}
	if cfg.queueSize != cfg.workerCount {
		t.Errorf("non-positive queue sizes should be ignored, got %d", cfg.queueSize)
	}
	if cfg.limiter != nil {
		t.Error("invalid throughput settings should be ignored")
	}
	if cfg.codec != Gob {
		t.Errorf("nil codec should be ignored, got %q", cfg.codec.Name())
	}
}

func TestCodecByName(t *testing.T) {
	if codecByName("json") != JSON {
		t.Error(`codecByName("json") should select the JSON codec`)
	}
	if codecByName("gob") != Gob {
		t.Error(`codecByName("gob") should select the Gob codec`)
	}
	if codecByName("") != Gob {
		t.Error("unknown names should fall back to Gob")
	}
}
