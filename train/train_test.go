package train

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/ruffrey/sine-lstm-go/sine"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	return logger
}

func TestConfig(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		if err := DefaultConfig().Validate(); err != nil {
			t.Fatal(err)
		}
	})
	bad := map[string]func(c *Config){
		"input size":    func(c *Config) { c.InputSize = 2 },
		"hidden size":   func(c *Config) { c.HiddenSize = 0 },
		"layers":        func(c *Config) { c.NumLayers = 0 },
		"seq len":       func(c *Config) { c.SeqLen = 1 },
		"learning rate": func(c *Config) { c.LearningRate = 0 },
		"log cadence":   func(c *Config) { c.LogEvery = 0 },
		"epochs":        func(c *Config) { c.Epochs = -1 },
	}
	for name, mutate := range bad {
		t.Run("rejects bad "+name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fail()
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("reports out of memory clearly", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HiddenSize = 1 << 33
		_, err := New(cfg, sine.New(), quietLogger())
		if err == nil || !strings.Contains(err.Error(), "memory") {
			t.Fatalf("unexpected %v", err)
		}
	})
	t.Run("same seed gives the same network", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Seed = 11
		a, _ := New(cfg, sine.New(), quietLogger())
		b, _ := New(cfg, sine.New(), quietLogger())
		if a.Net.Out.W[3] != b.Net.Out.W[3] {
			t.Fail()
		}
	})
}

func TestTrain(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epochs = 50
	cfg.LogEvery = 5
	cfg.Seed = 1
	trainer, err := New(cfg, sine.New(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}

	checkpoints, err := trainer.Train()
	if err != nil {
		t.Fatal(err)
	}
	if len(checkpoints) != 10 {
		t.Fatalf("got %d checkpoints", len(checkpoints))
	}
	for i, cp := range checkpoints {
		if cp.Epoch != i*5 {
			t.Errorf("checkpoint %d at epoch %d", i, cp.Epoch)
		}
		if math.IsNaN(cp.AvgLoss) || cp.AvgLoss < 0 {
			t.Fatalf("bad loss %v", cp.AvgLoss)
		}
		if i > 0 && cp.AvgLoss >= checkpoints[i-1].AvgLoss {
			t.Errorf("loss rose from %v to %v at epoch %d", checkpoints[i-1].AvgLoss, cp.AvgLoss, cp.Epoch)
		}
	}
}

func TestEvaluate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Epochs = 1
	cfg.SeqLen = 20
	cfg.EvalSteps = 137
	cfg.Seed = 2
	trainer, err := New(cfg, sine.New(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := trainer.Train(); err != nil {
		t.Fatal(err)
	}

	var truth, pred bytes.Buffer
	stats, err := trainer.Evaluate(&truth, &pred)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Steps != 137 || math.IsNaN(stats.RMSE) {
		t.Errorf("stats %+v", stats)
	}

	lines := func(name string, buf *bytes.Buffer) []float64 {
		var values []float64
		scanner := bufio.NewScanner(buf)
		for scanner.Scan() {
			v, err := strconv.ParseFloat(scanner.Text(), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s: bad line %q", name, scanner.Text())
			}
			values = append(values, v)
		}
		if len(values) != 137 {
			t.Fatalf("%s: %d lines", name, len(values))
		}
		return values
	}
	targets := lines("truth", &truth)
	lines("pred", &pred)

	wave := sine.New()
	for i, v := range targets {
		if math.Abs(v-float64(wave.Value(i+1))) > 1e-6 {
			t.Fatalf("target %d = %v", i, v)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestEvaluateWriteError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EvalSteps = 10
	cfg.Seed = 3
	trainer, _ := New(cfg, sine.New(), quietLogger())
	if _, err := trainer.Evaluate(failingWriter{}, io.Discard); err == nil {
		t.Fatal("expected write error")
	}
}
