/*
Package train drives the network: epochs over a sequence from a Source with a
state reset before each one, followed by an evaluation pass that writes
targets and predictions line by line.
*/
package train

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/getlantern/errors"
	"github.com/ruffrey/sine-lstm-go/mat32"
	"github.com/ruffrey/sine-lstm-go/recurrent"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

/*
Source yields the scalar series value at time index t.
*/
type Source interface {
	Value(t int) float32
}

/*
Config holds the model shape and the training schedule.
*/
type Config struct {
	InputSize    int     `json:"input_size"`
	HiddenSize   int     `json:"hidden_size"`
	NumLayers    int     `json:"num_layers"`
	SeqLen       int     `json:"seq_len"`
	Epochs       int     `json:"epochs"`
	LearningRate float32 `json:"learning_rate"`

	// LogEvery is the epoch cadence of loss checkpoints.
	LogEvery int `json:"log_every"`
	// EvalSteps is how many steps Evaluate runs after training.
	EvalSteps    int `json:"eval_steps"`
	EvalLogEvery int `json:"eval_log_every"`

	// Seed for weight initialization. 0 seeds from the clock.
	Seed int64 `json:"seed"`
}

/*
DefaultConfig is the sine wave setup: one layer of 10 hidden units, 1000-step
sequences, 30000 epochs.
*/
func DefaultConfig() Config {
	return Config{
		InputSize:    1,
		HiddenSize:   10,
		NumLayers:    1,
		SeqLen:       1000,
		Epochs:       30000,
		LearningRate: 0.00003,
		LogEvery:     500,
		EvalSteps:    5000,
		EvalLogEvery: 10,
	}
}

/*
Validate checks the config before anything is allocated.
*/
func (c Config) Validate() error {
	if c.InputSize != 1 {
		return errors.New("input size must be 1 for a scalar source, got %d", c.InputSize)
	}
	checks := []struct {
		name  string
		value int
	}{
		{"hidden size", c.HiddenSize},
		{"layers", c.NumLayers},
		{"log cadence", c.LogEvery},
		{"evaluation log cadence", c.EvalLogEvery},
	}
	for _, check := range checks {
		if check.value < 1 {
			return errors.New("%s must be positive, got %d", check.name, check.value)
		}
	}
	if c.SeqLen < 2 {
		return errors.New("sequence length must be at least 2, got %d", c.SeqLen)
	}
	if c.Epochs < 0 || c.EvalSteps < 0 {
		return errors.New("epochs and evaluation steps cannot be negative")
	}
	if !(c.LearningRate > 0) {
		return errors.New("learning rate must be positive, got %v", c.LearningRate)
	}
	return nil
}

/*
Checkpoint is the average loss of one logged epoch.
*/
type Checkpoint struct {
	Epoch   int
	AvgLoss float64
}

/*
EvalStats summarizes an evaluation pass.
*/
type EvalStats struct {
	Steps int
	RMSE  float64
}

/*
NewRand returns the seeded source weights are drawn from. A zero seed uses
the current time.
*/
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(uint64(seed)))
}

/*
Trainer owns the network and runs it against a Source.
*/
type Trainer struct {
	Config Config
	Net    *recurrent.Network

	source Source
	logger *logrus.Logger
}

/*
New validates cfg and builds the network. A nil logger gets logrus defaults.
*/
func New(cfg Config, source Source, logger *logrus.Logger) (*Trainer, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	net, err := recurrent.NewNetwork(cfg.InputSize, cfg.HiddenSize, cfg.NumLayers, NewRand(cfg.Seed))
	if mat32.IsOutOfMemory(err) {
		return nil, errors.New("not enough memory for %d layers of %d hidden units: %v",
			cfg.NumLayers, cfg.HiddenSize, err).With("hidden", cfg.HiddenSize).With("layers", cfg.NumLayers)
	}
	if err != nil {
		return nil, errors.Wrap(err)
	}

	logger.WithFields(logrus.Fields{
		"input":   cfg.InputSize,
		"hidden":  cfg.HiddenSize,
		"layers":  cfg.NumLayers,
		"seq_len": cfg.SeqLen,
		"learn":   cfg.LearningRate,
	}).Debug("created network")

	return &Trainer{
		Config: cfg,
		Net:    net,
		source: source,
		logger: logger,
	}, nil
}

/*
Epoch runs one pass over the first SeqLen values of the source, starting from
zero state, updating after every step. It returns the summed squared error
divided by SeqLen.
*/
func (t *Trainer) Epoch() (float64, error) {
	t.Net.Reset()
	losses := make([]float64, 0, t.Config.SeqLen-1)
	input := make([]float32, 1)
	for step := 0; step < t.Config.SeqLen-1; step++ {
		input[0] = t.source.Value(step)
		target := t.source.Value(step + 1)

		pred := t.Net.Forward(input)
		loss, grad := recurrent.SquaredError(pred, target)
		losses = append(losses, float64(loss))

		if err := t.Net.Backward(grad, t.Config.LearningRate); err != nil {
			return 0, errors.Wrap(err).With("step", step)
		}
	}
	return floats.Sum(losses) / float64(t.Config.SeqLen), nil
}

/*
Train runs Config.Epochs epochs and returns a checkpoint for every LogEvery-th
epoch, starting with the first.
*/
func (t *Trainer) Train() ([]Checkpoint, error) {
	var checkpoints []Checkpoint
	for epoch := 0; epoch < t.Config.Epochs; epoch++ {
		avg, err := t.Epoch()
		if err != nil {
			return checkpoints, errors.Wrap(err).With("epoch", epoch)
		}
		if epoch%t.Config.LogEvery == 0 {
			checkpoints = append(checkpoints, Checkpoint{Epoch: epoch, AvgLoss: avg})
			t.logger.WithFields(logrus.Fields{
				"epoch":    epoch,
				"avg_loss": avg,
			}).Info("training")
		}
	}
	return checkpoints, nil
}

/*
Evaluate runs EvalSteps forward steps from the current state, without
updating, and writes each next-step target to truth and each prediction to
pred, one "%f" value per line.
*/
func (t *Trainer) Evaluate(truth io.Writer, pred io.Writer) (EvalStats, error) {
	steps := t.Config.EvalSteps
	truthOut := bufio.NewWriter(truth)
	predOut := bufio.NewWriter(pred)
	targets := make([]float64, 0, steps)
	preds := make([]float64, 0, steps)

	input := make([]float32, 1)
	for step := 0; step < steps; step++ {
		input[0] = t.source.Value(step)
		prediction := t.Net.Forward(input)
		target := t.source.Value(step + 1)

		if _, err := fmt.Fprintf(truthOut, "%f\n", target); err != nil {
			return EvalStats{}, errors.Wrap(err).With("step", step)
		}
		if _, err := fmt.Fprintf(predOut, "%f\n", prediction); err != nil {
			return EvalStats{}, errors.Wrap(err).With("step", step)
		}
		targets = append(targets, float64(target))
		preds = append(preds, float64(prediction))

		if step%t.Config.EvalLogEvery == 0 {
			t.logger.WithFields(logrus.Fields{
				"t":     step,
				"input": input[0],
				"pred":  prediction,
				"next":  target,
			}).Info("evaluate")
		}
	}
	if err := truthOut.Flush(); err != nil {
		return EvalStats{}, errors.Wrap(err)
	}
	if err := predOut.Flush(); err != nil {
		return EvalStats{}, errors.Wrap(err)
	}

	stats := EvalStats{Steps: steps}
	if steps > 0 {
		stats.RMSE = floats.Distance(preds, targets, 2) / math.Sqrt(float64(steps))
	}
	t.logger.WithFields(logrus.Fields{
		"steps": stats.Steps,
		"rmse":  stats.RMSE,
	}).Info("evaluation done")
	return stats, nil
}
