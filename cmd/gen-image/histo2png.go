package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skryldev/gen-image/adapters/encoder"
	"github.com/Skryldev/gen-image/adapters/storage"
	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/histogram"
	"github.com/Skryldev/gen-image/utils"
)

func newHisto2PNGCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "histo2png <histo.bin> [out.png]",
		Short: "Render a histogram record as a bar chart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := strings.TrimSuffix(args[0], ".bin") + ".png"
			if len(args) == 2 {
				out = args[1]
			}
			rec, err := renderHistogram(cmd, args[0], out)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "%s: %s\n", out, rec.Title())
			return nil
		},
	}
}

func renderHistogram(cmd *cobra.Command, in, out string) (histogram.Record, error) {
	ctx := cmd.Context()
	store, err := storage.NewLocal("", 0)
	if err != nil {
		return nil, err
	}
	data, err := readAll(ctx, store, in)
	if err != nil {
		return nil, err
	}
	rec, err := histogram.Decode(data)
	if err != nil {
		return nil, err
	}

	var enc core.Encoder
	switch c := core.Container(utils.FormatFromPath(out)); c {
	case core.ContainerBMP:
		enc = encoder.NewBMP()
	case core.ContainerTIFF:
		enc = encoder.NewTIFF()
	case core.ContainerPNM:
		enc = encoder.NewPNM()
	default:
		enc = encoder.NewPNG()
	}

	img, err := encoder.FromImage(histogram.Render(rec))
	if err != nil {
		return nil, err
	}
	defer img.Release()
	encoded, err := enc.Encode(ctx, img)
	if err != nil {
		return nil, err
	}

	if err := store.Put(ctx, core.StorageKey{Path: out}, bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return rec, nil
}

func readAll(ctx context.Context, store core.StorageAdapter, path string) ([]byte, error) {
	rc, err := store.Get(ctx, core.StorageKey{Path: path})
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "histo2png.read", err)
	}
	return data, nil
}
