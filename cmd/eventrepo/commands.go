package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jensholdgaard/eventrepo/internal/event"
	"github.com/jensholdgaard/eventrepo/internal/query"
)

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Append an event to a stream",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			stream, _ := cmd.Flags().GetString("stream")
			typ, _ := cmd.Flags().GetString("type")
			id, _ := cmd.Flags().GetString("id")
			data, _ := cmd.Flags().GetString("data")
			meta, _ := cmd.Flags().GetString("metadata")

			created, err := s.repo.Create(cmd.Context(), event.Event{
				ID:       id,
				Type:     typ,
				Data:     json.RawMessage(data),
				Metadata: json.RawMessage(meta),
			}, stream)
			if err != nil {
				return err
			}
			return newEncoder(cmd.OutOrStdout()).Encode(created)
		}),
	}
	cmd.Flags().String("stream", "", "Stream to append to")
	cmd.Flags().String("type", "", "Event type tag")
	cmd.Flags().String("id", "", "Event identifier (generated when empty)")
	cmd.Flags().String("data", "", "Event payload as JSON")
	cmd.Flags().String("metadata", "", "Event metadata as JSON")
	_ = cmd.MarkFlagRequired("stream")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newReadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a window of events from a stream or from all streams",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
			stream, _ := cmd.Flags().GetString("stream")
			all, _ := cmd.Flags().GetBool("all")
			from, _ := cmd.Flags().GetString("from")
			fromID, _ := cmd.Flags().GetString("from-id")
			count, _ := cmd.Flags().GetInt("count")
			backward, _ := cmd.Flags().GetBool("backward")
			expr, _ := cmd.Flags().GetString("filter")

			filter, err := query.Compile(expr)
			if err != nil {
				return err
			}

			cursor := event.ParsePosition(from)
			if cmd.Flags().Changed("from-id") {
				cursor = event.After(fromID)
			}

			dir := event.Forward
			if backward {
				dir = event.Backward
			}
			events, err := readWindow(cmd, s.repo, all, stream, cursor, count, dir)
			if err != nil {
				return err
			}
			matched, err := filter.Apply(events)
			if err != nil {
				return err
			}

			s.logger.DebugContext(cmd.Context(), "read window",
				slog.String("direction", dir.String()),
				slog.Int("read", len(events)),
				slog.Int("matched", len(matched)),
			)

			enc := newEncoder(cmd.OutOrStdout())
			for _, e := range matched {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		}),
	}
	cmd.Flags().String("stream", "", "Stream to read")
	cmd.Flags().Bool("all", false, "Read the global order across all streams")
	cmd.Flags().String("from", "head", "Exclusive cursor: head or an event id (\"head\" is reserved, use --from-id for an event named head)")
	cmd.Flags().String("from-id", "", "Exclusive cursor taken literally as an event id")
	cmd.Flags().Int("count", 100, "Maximum number of events in the window")
	cmd.Flags().Bool("backward", false, "Read most recent first")
	cmd.Flags().String("filter", "", "CEL filter applied to the window, e.g. type == \"Deposited\"")
	cmd.MarkFlagsMutuallyExclusive("stream", "all")
	cmd.MarkFlagsMutuallyExclusive("from", "from-id")
	cmd.MarkFlagsOneRequired("stream", "all")
	return cmd
}

func readWindow(cmd *cobra.Command, repo event.Repository, all bool, stream string, from event.Position, count int, dir event.Direction) ([]event.Event, error) {
	ctx := cmd.Context()
	switch {
	case all && dir == event.Forward:
		return repo.ReadAllStreamsForward(ctx, from, count)
	case all:
		return repo.ReadAllStreamsBackward(ctx, from, count)
	case dir == event.Forward:
		return repo.ReadEventsForward(ctx, stream, from, count)
	default:
		return repo.ReadEventsBackward(ctx, stream, from, count)
	}
}

func newHasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "has <event-id>",
		Short: "Report whether an event identifier was ever created",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			ok, err := s.repo.HasEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return newEncoder(cmd.OutOrStdout()).Encode(struct {
				ID     string `json:"id"`
				Exists bool   `json:"exists"`
			}{args[0], ok})
		}),
	}
}

func newLastCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "last <stream>",
		Short: "Print the most recent event of a stream",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			e, ok, err := s.repo.LastStreamEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("stream %q has no events", args[0])
			}
			return newEncoder(cmd.OutOrStdout()).Encode(e)
		}),
	}
}

func newDeleteStreamCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-stream <stream>",
		Short: "Delete a stream's index; events stay in the global order",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return s.repo.DeleteStream(cmd.Context(), args[0])
		}),
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
