package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/brettbedarf/areafs"
	"github.com/spf13/cobra"
)

func newCatCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Stream a file's contents to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			rc, err := f.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(app.Out, rc)
			return err
		},
	}
}

func newStatCmd(app *App) *cobra.Command {
	var timeKind string

	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Show a file's size, timestamp, permissions and URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := areafs.ParseTimeKind(timeKind)
			if err != nil {
				return err
			}
			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			return stat(cmd.Context(), app.Out, f, kind)
		},
	}
	cmd.Flags().StringVar(&timeKind, "time", "modified", "Timestamp to show: modified|created")
	return cmd
}

func stat(ctx context.Context, out io.Writer, f *areafs.File, kind areafs.TimeKind) error {
	size, err := f.Size(ctx)
	if err != nil {
		return err
	}
	ts, err := f.Time(ctx, kind)
	if err != nil {
		return err
	}
	perms, err := f.Permissions(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "path: %s\n", f.Path())
	fmt.Fprintf(out, "size: %d\n", size)
	fmt.Fprintf(out, "%s: %s\n", kind, ts.Format(time.RFC3339))
	fmt.Fprintf(out, "permissions: %s\n", perms)
	// not every area can address files by URL
	if url, err := f.URL(ctx); err == nil {
		fmt.Fprintf(out, "url: %s\n", url)
	}
	return nil
}

func newRenameCmd(app *App) *cobra.Command {
	var ext string

	cmd := &cobra.Command{
		Use:   "rename <path> <name>",
		Short: "Rename a file within its directory",
		Long: `Rename a file within its directory. The current extension is kept unless
--ext is given; --ext "" drops the extension.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ext") {
				err = f.RenameExt(cmd.Context(), args[1], ext)
			} else {
				err = f.Rename(cmd.Context(), args[1])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, f.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "New extension")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <dir>",
		Short: "Move a file into another directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			if err := f.Move(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, f.Path())
			return nil
		},
	}
}

func newCopyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cp <path> <dir>",
		Short: "Copy a file into another directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			return f.Copy(cmd.Context(), args[1])
		},
	}
}

func newPutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "put <path> [file|-]",
		Short: "Replace a file's contents from a local file or stdin",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				content []byte
				err     error
			)
			if len(args) == 1 || args[1] == "-" {
				content, err = io.ReadAll(app.In)
			} else {
				content, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to read content: %w", err)
			}

			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			return f.Update(cmd.Context(), content)
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.forge(args[0])
			if err != nil {
				return err
			}
			return f.Delete(cmd.Context())
		},
	}
}
