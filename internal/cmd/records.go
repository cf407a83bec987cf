package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitrone/datafiles/internal/api"
	"github.com/gravitrone/datafiles/internal/errs"
	"github.com/gravitrone/datafiles/internal/records"
)

// failed hides remote detail behind the generic notice. Validation errors
// pass through so the user can fix the input.
func failed(err error) error {
	if errors.Is(err, errs.ErrValidation) {
		return err
	}
	return fmt.Errorf("%s %s (%w)", records.FailureTitle, records.FailureDescription, err)
}

// withSession opens a session for the duration of fn.
func withSession(fn func(s *Session) error) error {
	s, err := OpenSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// fileFlags registers --file-1 .. --file-3.
func fileFlags(cmd *cobra.Command, paths *[api.SlotCount]string, usage string) {
	for i := range paths {
		cmd.Flags().StringVar(&paths[i], fmt.Sprintf("file-%d", i+1), "", fmt.Sprintf(usage, i+1))
	}
}

// applyFiles selects the given paths on d after checking they are readable files.
func applyFiles(d *records.Draft, paths [api.SlotCount]string) error {
	for i, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file %d: %w", i+1, err)
		}
		if info.IsDir() {
			return fmt.Errorf("file %d: %s is a directory", i+1, path)
		}
		d.SetFile(i+1, records.FromPath(path))
	}
	return nil
}

// --- list ---

// ListCmd returns the `datafiles list` command.
func ListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(func(s *Session) error {
				rows, err := s.Records.List(cmd.Context())
				if err != nil {
					return failed(err)
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return writeJSON(out, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "no records found")
					return nil
				}
				return writeTable(out, rows)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, rows []api.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDESCRIPTION\tCREATE AT\tUPDATED AT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Title,
			r.Description,
			records.FormatTimestamp(r.CreatedAt),
			records.FormatTimestamp(r.UpdatedAt),
		)
	}
	return tw.Flush()
}

// --- show ---

// ShowCmd returns the `datafiles show` command.
func ShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a record and its download links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *Session) error {
				detail, err := s.Records.Detail(cmd.Context(), api.RowID(args[0]))
				if err != nil {
					return failed(err)
				}
				printDetail(cmd.OutOrStdout(), detail)
				return nil
			})
		},
	}
}

func printDetail(w io.Writer, d *records.Detail) {
	rec := d.Record
	fmt.Fprintf(w, "Detail #%s\n", rec.ID)
	fmt.Fprintf(w, "  title:       %s\n", rec.Title)
	fmt.Fprintf(w, "  description: %s\n", rec.Description)
	fmt.Fprintf(w, "  created:     %s\n", records.FormatTimestamp(rec.CreatedAt))
	fmt.Fprintf(w, "  updated:     %s\n", records.FormatTimestamp(rec.UpdatedAt))
	for slot := 1; slot <= api.SlotCount; slot++ {
		dl, ok := d.Download(slot)
		if !ok {
			fmt.Fprintf(w, "  file %d:      -\n", slot)
			continue
		}
		fmt.Fprintf(w, "  file %d:      %s\n", slot, dl.Filename)
		fmt.Fprintf(w, "               %s\n", dl.URL)
	}
}

// --- create ---

// CreateCmd returns the `datafiles create` command.
func CreateCmd() *cobra.Command {
	var (
		draft records.Draft
		paths [api.SlotCount]string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record, uploading up to three files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyFiles(&draft, paths); err != nil {
				return err
			}
			return withSession(func(s *Session) error {
				rec, err := s.Records.Create(cmd.Context(), draft)
				if err != nil {
					return failed(err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), records.CreatedMessage)
				fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "record title (required)")
	cmd.Flags().StringVar(&draft.Description, "description", "", "record description (required)")
	fileFlags(cmd, &paths, "file for slot %d, any type")
	return cmd
}

// --- update ---

// UpdateCmd returns the `datafiles update` command. Unset flags keep the
// stored value. Selected files replace their slots after the metadata is
// saved.
func UpdateCmd() *cobra.Command {
	var (
		title       string
		description string
		paths       [api.SlotCount]string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record, replacing image attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := api.RowID(args[0])
			return withSession(func(s *Session) error {
				current, err := s.Records.Get(cmd.Context(), id)
				if err != nil {
					return failed(err)
				}
				draft := records.Draft{Title: current.Title, Description: current.Description}
				if cmd.Flags().Changed("title") {
					draft.Title = title
				}
				if cmd.Flags().Changed("description") {
					draft.Description = description
				}
				if err := applyFiles(&draft, paths); err != nil {
					return err
				}

				if _, err := s.Records.Update(cmd.Context(), id, draft); err != nil {
					return failed(err)
				}
				s.Records.Wait()
				fmt.Fprintln(cmd.ErrOrStderr(), records.UpdatedMessage)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	fileFlags(cmd, &paths, "image for slot %d")
	return cmd
}

// --- download ---

// DownloadCmd returns the `datafiles download` command.
func DownloadCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download <id> <slot>",
		Short: "Save an attachment locally",
		Long:  "Save the attachment in slot 1-3. --out - writes to stdout. Without --out, or with a directory, the remote file name is used and an existing file is never replaced; a numbered name is picked instead. An explicit file path is replaced.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := api.RowID(args[0])
			slot, err := strconv.Atoi(args[1])
			if err != nil || slot < 1 || slot > api.SlotCount {
				return fmt.Errorf("slot must be 1-%d, got %q", api.SlotCount, args[1])
			}
			return withSession(func(s *Session) error {
				if out == "-" {
					if _, err := s.Records.Fetch(cmd.Context(), id, slot, cmd.OutOrStdout()); err != nil {
						return failed(err)
					}
					return nil
				}
				path, err := download(cmd, s, id, slot, out)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination path, or - for stdout")
	return cmd
}

func download(cmd *cobra.Command, s *Session, id api.RowID, slot int, out string) (string, error) {
	detail, err := s.Records.Detail(cmd.Context(), id)
	if err != nil {
		return "", failed(err)
	}
	dl, ok := detail.Download(slot)
	if !ok {
		return "", fmt.Errorf("record %s has no file in slot %d: %w", id, slot, errs.ErrNotFound)
	}

	path, replace := out, out != ""
	if path == "" {
		path = dl.LocalName()
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path, replace = filepath.Join(path, dl.LocalName()), false
	}

	path, err = records.SaveFile(path, replace, func(w io.Writer) error {
		_, err := s.Client.Download(cmd.Context(), dl.URL, w)
		return err
	})
	if err != nil {
		s.Logger.Error("download attachment",
			zap.String("record_id", id.String()),
			zap.Int("slot", slot),
			zap.Error(err),
		)
		return "", failed(err)
	}
	return path, nil
}
