// Command cellbench times the Cell update variants against a single shared
// cell and verifies that no update was lost.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"interlocker/internal/bench"
	"interlocker/pkg/cell"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("cellbench: ")

	spin := cell.DefaultSpin

	n := flag.Int("n", 100_000, "update calls per worker")
	workers := flag.Int("workers", 1, "number of concurrent workers")
	variant := flag.String("variant", "all", "variant to run: all, update, except, short, indexed or fold")
	flag.IntVar(&spin.Spins, "spins", spin.Spins, "busy-spin rounds before UpdateShort yields")
	flag.IntVar(&spin.MaxSpin, "max-spin", spin.MaxSpin, "iterations cap for one busy-spin round")
	flag.IntVar(&spin.SleepEvery, "sleep-every", spin.SleepEvery, "after spinning, sleep every Nth round (0 never sleeps)")
	flag.DurationVar(&spin.MaxSleep, "max-sleep", spin.MaxSleep, "upper bound on one backoff sleep")
	flag.Parse()

	variants, err := bench.ParseVariant(*variant)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := bench.Config{
		N:       *n,
		Workers: *workers,
		Spin:    spin,
	}

	results, err := bench.RunAll(ctx, variants, cfg)
	for _, r := range results {
		fmt.Println(r)
	}
	if err != nil {
		stop()
		log.Fatalf("verification failed: %v", err)
	}
}
