package main

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/BackendStack21/mlkem-go/metrics"
)

func newBenchCommand(a *app) *cobra.Command {
	var level string
	var iterations int

	cmd := &cobra.Command{
		Use:     "bench",
		Short:   "Benchmark key generation, encapsulation and decapsulation",
		Example: `  mlkem bench --level 1024 --iterations 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scheme(level)
			if err != nil {
				return err
			}
			if iterations == 0 {
				iterations = a.cfg.Bench.Iterations
			}
			if iterations < 1 {
				return fmt.Errorf("invalid argument: iterations must be positive, got %d", iterations)
			}

			reg := prometheus.NewRegistry()
			inst, err := metrics.Instrument(s, reg)
			if err != nil {
				return err
			}

			a.log.Noticef("benchmarking %s with %d iterations", s.Name(), iterations)
			start := time.Now()
			for i := 0; i < iterations; i++ {
				pk, sk, err := inst.GenerateKeyPair()
				if err != nil {
					return err
				}
				ct, ss, err := inst.Encapsulate(pk)
				if err != nil {
					return err
				}
				ss2, err := inst.Decapsulate(sk, ct)
				if err != nil {
					return err
				}
				if !bytes.Equal(ss, ss2) {
					return fmt.Errorf("shared secret mismatch in iteration %d", i)
				}
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Benchmark Results\n", s.Name())
			fmt.Fprintf(out, "Iterations: %d (total %v)\n\n", iterations, elapsed.Round(time.Millisecond))

			families, err := reg.Gather()
			if err != nil {
				return err
			}
			rows := make(map[string]time.Duration)
			for _, mf := range families {
				if mf.GetName() != "mlkem_kem_operation_duration_seconds" {
					continue
				}
				for _, m := range mf.GetMetric() {
					var op string
					for _, lp := range m.GetLabel() {
						if lp.GetName() == "op" {
							op = lp.GetValue()
						}
					}
					sum := m.GetSummary()
					if sum.GetSampleCount() == 0 {
						continue
					}
					avg := sum.GetSampleSum() / float64(sum.GetSampleCount())
					rows[op] = time.Duration(avg * float64(time.Second))
				}
			}
			ops := make([]string, 0, len(rows))
			for op := range rows {
				ops = append(ops, op)
			}
			sort.Strings(ops)
			for _, op := range ops {
				fmt.Fprintf(out, "  %-12s %v (avg)\n", op+":", rows[op])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "parameter set (512, 768, 1024)")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "number of rounds (default from config)")
	return cmd
}
