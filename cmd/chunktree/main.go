package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/permadata/chunktree"
)

func main() {
	root := &cobra.Command{
		Use:           "chunktree",
		Short:         "compute data roots, chunk layouts and inclusion proofs for files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRootCmd(), newChunksCmd(), newVerifyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "root FILE",
		Short: "Print the data root of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			tree := chunktree.New(data)
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), chunktree.Base64(tree.Root()).String())
				return nil
			}

			out, err := json.Marshal(struct {
				DataRoot chunktree.Base64 `json:"data_root"`
				DataSize uint64           `json:"data_size,string"`
				Chunks   int              `json:"chunks"`
			}{
				DataRoot: tree.Root(),
				DataSize: tree.DataSize(),
				Chunks:   tree.Size(),
			})
			if err != nil {
				return fmt.Errorf("marshal data root: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the data root as a JSON object")
	return cmd
}

func newChunksCmd() *cobra.Command {
	var outputFile string
	cmd := &cobra.Command{
		Use:   "chunks FILE",
		Short: "Emit the file's chunk submission elements as a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			uploads := chunktree.New(data).UploadChunks()
			var buf bytes.Buffer
			enc := json.NewEncoder(&buf)
			enc.SetIndent("", "  ")
			if err := enc.Encode(uploads); err != nil {
				return fmt.Errorf("marshal chunks: %w", err)
			}

			if outputFile == "" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chunks to %s\n", len(uploads), outputFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the JSON array to a file instead of stdout")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE",
		Short: "Re-verify every element of a chunks JSON file against its data root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read chunks file: %w", err)
			}

			var uploads []chunktree.UploadChunk
			if err := json.Unmarshal(raw, &uploads); err != nil {
				return fmt.Errorf("parse chunks file: %w", err)
			}
			if len(uploads) == 0 {
				return fmt.Errorf("chunks file holds no elements")
			}

			root := uploads[0].DataRoot
			size := uploads[0].DataSize
			for i, u := range uploads {
				if !bytes.Equal(u.DataRoot, root) {
					return fmt.Errorf("chunk %d: data root differs from chunk 0", i)
				}
				if u.DataSize != size {
					return fmt.Errorf("chunk %d: data size differs from chunk 0", i)
				}
				if !u.Verify() {
					return fmt.Errorf("chunk %d: proof rejected for offset %d", i, u.Offset)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d chunks verified against data root %s\n", len(uploads), root.String())
			return nil
		},
	}
}
