package lazychess_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benwyrosdick/lazychess"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/position"
)

// ExampleOpen analyzes the Ruy Lopez with the Stockfish found on PATH.
func ExampleOpen() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	engine, err := lazychess.Open(ctx, "stockfish",
		lazychess.WithMultiPV(3),
		lazychess.WithEngineOptions(map[string]string{"Threads": "2", "Hash": "128"}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	status, err := engine.EvaluateFEN(ctx, "", []string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, 3, 18)
	if err != nil {
		log.Fatal(err)
	}

	pos, _ := position.FromCommand(status.Position)
	for _, line := range status.Analysis.Lines {
		fmt.Printf("%d. %s %s\n", line.Index, pos.WhitePerspective(line.Score), pos.FormatPV(line.PV))
	}
}

// ExampleEngine_Runner follows an infinite analysis until it reaches depth 20.
func ExampleEngine_Runner() {
	ctx := context.Background()
	engine, err := lazychess.Open(ctx, "")
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	r := engine.Runner()
	pos, err := position.FromMoves("d4", "d5", "c4")
	if err != nil {
		log.Fatal(err)
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	updates := r.Watch(watchCtx)

	if err := r.Analyze(ctx, pos.Request(2, domain.Go{Infinite: true})); err != nil {
		log.Fatal(err)
	}
	for status := range updates {
		best, ok := status.Analysis.Best()
		if ok && best.Depth >= 20 {
			fmt.Println(best.Score, pos.FormatPV(best.PV))
			break
		}
	}
	_ = r.Stop(ctx)
}
