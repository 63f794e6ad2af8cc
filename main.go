package main

import (
	"os"

	"github.com/getlantern/errors"
	"github.com/pkg/profile"
	"github.com/ruffrey/sine-lstm-go/sine"
	"github.com/ruffrey/sine-lstm-go/train"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

// config is filled from flags in the Before hook
var config = train.DefaultConfig()

var log = logrus.New()

func main() {
	defaults := train.DefaultConfig()

	app := cli.NewApp()
	app.Name = "sine-lstm"
	app.Usage = "Train an LSTM to predict the next value of a sine wave."
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		{
			Name:  "train",
			Usage: "Train a network, then evaluate it and write targets and predictions",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "input",
					Value: defaults.InputSize,
					Usage: "Input `size` per time step",
				},
				cli.IntFlag{
					Name:  "hidden",
					Value: defaults.HiddenSize,
					Usage: "Hidden state `width` of every layer",
				},
				cli.IntFlag{
					Name:  "layers",
					Value: defaults.NumLayers,
					Usage: "Number of stacked LSTM layers",
				},
				cli.IntFlag{
					Name:  "seqlen",
					Value: defaults.SeqLen,
					Usage: "Sequence length: time steps per epoch",
				},
				cli.IntFlag{
					Name:  "epochs",
					Value: defaults.Epochs,
					Usage: "Training epochs",
				},
				cli.Float64Flag{
					Name:  "learn",
					Value: float64(defaults.LearningRate),
					Usage: "Learning `rate` for plain SGD",
				},
				cli.IntFlag{
					Name:  "log-every",
					Value: defaults.LogEvery,
					Usage: "Log the average loss every `n` epochs",
				},
				cli.IntFlag{
					Name:  "eval-steps",
					Value: defaults.EvalSteps,
					Usage: "Evaluation horizon in time steps",
				},
				cli.IntFlag{
					Name:  "eval-log-every",
					Value: defaults.EvalLogEvery,
					Usage: "Log an evaluation step every `n` steps",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "Weight initialization seed (0 seeds from the clock)",
				},
				cli.Float64Flag{
					Name:  "freq",
					Value: sine.DefaultFreq,
					Usage: "Angular step of the sine wave per time index",
				},
				cli.StringFlag{
					Name:  "truth",
					Value: "y_true.txt",
					Usage: "`file` for the ground truth next-step values",
				},
				cli.StringFlag{
					Name:  "pred",
					Value: "y_pred.txt",
					Usage: "`file` for the predictions",
				},
				cli.BoolFlag{
					Name:  "verbose",
					Usage: "Debug logging",
				},
			},
			Before: func(c *cli.Context) error {
				config.InputSize = c.Int("input")
				config.HiddenSize = c.Int("hidden")
				config.NumLayers = c.Int("layers")
				config.SeqLen = c.Int("seqlen")
				config.Epochs = c.Int("epochs")
				config.LearningRate = float32(c.Float64("learn"))
				config.LogEvery = c.Int("log-every")
				config.EvalSteps = c.Int("eval-steps")
				config.EvalLogEvery = c.Int("eval-log-every")
				config.Seed = c.Int64("seed")
				if c.Bool("verbose") {
					log.SetLevel(logrus.DebugLevel)
				}
				return nil
			},
			Action: func(c *cli.Context) error {
				return training(
					sine.Wave{Freq: float32(c.Float64("freq"))},
					c.String("truth"),
					c.String("pred"),
				)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func training(source train.Source, truthPath string, predPath string) (err error) {
	// cpu profiling via PERF environment flag
	if profileWhich := os.Getenv("PERF"); profileWhich != "" {
		if profileWhich == "mem" {
			defer profile.Start(profile.MemProfile).Stop()
		} else if profileWhich == "cpu" {
			defer profile.Start(profile.CPUProfile).Stop()
		}
	}
	log.WithFields(logrus.Fields{
		"learn":  config.LearningRate,
		"epochs": config.Epochs,
		"seqlen": config.SeqLen,
		"hidden": config.HiddenSize,
		"layers": config.NumLayers,
	}).Info("optimization params")

	trainer, err := train.New(config, source, log)
	if err != nil {
		return err
	}
	if _, err = trainer.Train(); err != nil {
		return err
	}

	log.Info("testing the trained model")
	truth, pred, err := createOutputFiles(truthPath, predPath)
	if err != nil {
		return err
	}
	defer func() {
		for _, f := range []*os.File{truth, pred} {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr).With("file", f.Name())
			}
		}
	}()

	_, err = trainer.Evaluate(truth, pred)
	return err
}
