package main

import (
	"bytes"
	"context"
	"encoding"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Skryldev/gen-image/adapters/storage"
	"github.com/Skryldev/gen-image/core"
	"github.com/Skryldev/gen-image/lut"
)

var (
	lutKinds = []lut.Kind{lut.KindZero, lut.KindIdentity, lut.KindGamma}
	cluKinds = []lut.Kind{lut.KindZero, lut.KindIdentity, lut.KindWave}
)

func newLUTCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "lut [dir]",
		Short: "Write the test look up tables (lut-*.bin and clu-*.bin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			names, err := writeTables(cmd.Context(), dir)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(stdout, name)
			}
			return nil
		},
	}
}

// writeTables generates every table kind into dir and returns the file names
// in a stable order. Tables are independent, so they are built and written
// concurrently.
func writeTables(ctx context.Context, dir string) ([]string, error) {
	store, err := storage.NewLocal(dir, 0)
	if err != nil {
		return nil, err
	}

	type job struct {
		name string
		gen  func() (encoding.BinaryMarshaler, error)
	}
	var jobs []job
	for _, k := range lutKinds {
		k := k
		jobs = append(jobs, job{"lut-" + string(k) + ".bin", func() (encoding.BinaryMarshaler, error) {
			return lut.Generate1D(k)
		}})
	}
	for _, k := range cluKinds {
		k := k
		jobs = append(jobs, job{"clu-" + string(k) + ".bin", func() (encoding.BinaryMarshaler, error) {
			return lut.Generate3D(k)
		}})
	}

	g, ctx := errgroup.WithContext(ctx)
	names := make([]string, len(jobs))
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			t, err := j.gen()
			if err != nil {
				return err
			}
			data, err := t.MarshalBinary()
			if err != nil {
				return err
			}
			if err := store.Put(ctx, core.StorageKey{Path: j.name}, bytes.NewReader(data)); err != nil {
				return err
			}
			names[i] = j.name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}
