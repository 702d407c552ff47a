package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparsekit/sparsekit/lu"
	"github.com/sparsekit/sparsekit/mtx"
)

func newInfoCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info <matrix.mtx>",
		Short: "Run symbolic analysis only and report the block structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(root, args[0])
		},
	}
}

func runInfo(root *rootOptions, path string) error {
	log := root.logger()
	opts, err := root.solverOptions()
	if err != nil {
		return err
	}

	a, err := mtx.LoadFile(path)
	if err != nil {
		return err
	}
	log.Debug("loaded matrix", "path", path, "rows", a.Rows(), "cols", a.Cols(), "nnz", a.NNZ())

	sym, err := lu.Analyze(a, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("matrix:           %s\n", path)
	fmt.Printf("size:             %d x %d, %d nonzeros\n", a.Rows(), a.Cols(), a.NNZ())
	fmt.Printf("blocks:           %d (largest %d)\n", sym.NumBlocks(), sym.MaxBlockSize())
	fmt.Printf("off-diagonal nnz: %d\n", sym.OffDiagonalNNZ())
	if r := sym.StructuralRank(); r >= 0 {
		fmt.Printf("structural rank:  %d\n", r)
	}
	if est := sym.EstimatedLnz(); est > 0 {
		fmt.Printf("estimated nnz(L): %.0f\n", est)
	}

	return nil
}
