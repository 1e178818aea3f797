package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/kbukum/cognitokit/app"
	"github.com/kbukum/cognitokit/storage"
)

func newFilesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage files in the signed-in identity's storage folder",
		Long: `Read and write objects under <storage.prefix><identity id>/ with the
identity pool credentials of the current session.`,
	}
	cmd.AddCommand(newFilesLsCmd(c), newFilesPutCmd(c), newFilesGetCmd(c))
	return cmd
}

// withFiles runs fn with the identity's folder of an enabled storage module.
func (c *cli) withFiles(cmd *cobra.Command, fn func(ctx context.Context, files *storage.Scoped) error) error {
	enable := func(cfg *app.Config) { cfg.Storage.Enabled = true }
	return c.runTask(cmd, enable, func(ctx context.Context, kit *app.Kit) error {
		if _, err := buildFromSession(ctx, kit); err != nil {
			return err
		}
		files, err := kit.Storage.ForIdentity(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, files)
	})
}

func newFilesLsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return c.withFiles(cmd, func(ctx context.Context, files *storage.Scoped) error {
				list, err := files.List(ctx, prefix)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(list))
				for _, f := range list {
					rows = append(rows, []string{
						strconv.FormatInt(f.Size, 10),
						f.LastModified.UTC().Format(time.RFC3339),
						f.Path,
					})
				}
				return renderTable(cmd.OutOrStdout(), []string{"Size", "Modified", "Path"}, rows)
			})
		},
	}
}

func newFilesPutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-file> [remote-path]",
		Short: "Upload a file; - reads stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, remote := args[0], ""
			if len(args) == 2 {
				remote = args[1]
			}
			if remote == "" {
				if local == "-" {
					return fmt.Errorf("a remote path is required when reading stdin")
				}
				remote = path.Base(local)
			}

			var src io.Reader = cmd.InOrStdin()
			if local != "-" {
				f, err := os.Open(local)
				if err != nil {
					return err
				}
				defer f.Close()
				src = f
			}
			return c.withFiles(cmd, func(ctx context.Context, files *storage.Scoped) error {
				if err := files.Upload(ctx, remote, src); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Uploaded %s\n", remote)
				return nil
			})
		},
	}
}

func newFilesGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <remote-path> [local-file]",
		Short: "Download a file; writes stdout without a local file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withFiles(cmd, func(ctx context.Context, files *storage.Scoped) error {
				rc, err := files.Download(ctx, args[0])
				if err != nil {
					return err
				}
				defer rc.Close()

				if len(args) == 1 || args[1] == "-" {
					_, err = io.Copy(cmd.OutOrStdout(), rc)
					return err
				}
				f, err := os.Create(args[1])
				if err != nil {
					return err
				}
				if _, err := io.Copy(f, rc); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
}

// renderTable writes rows as a borderless, left-aligned table.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
