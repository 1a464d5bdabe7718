package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and edit the memory store",
	}
	cmd.AddCommand(
		newMemoryStoreCmd(),
		newMemoryGetCmd(),
		newMemorySearchCmd(),
		newMemoryStatsCmd(),
	)
	return cmd
}

func newMemoryStoreCmd() *cobra.Command {
	var (
		memType    string
		topic      string
		keywords   []string
		source     string
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "store <content>",
		Short: "Store a memory record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := contractx.ParseMemoryType(memType)
			if err != nil {
				return err
			}
			store, _, err := wireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			req := contractx.StoreRequest{
				Type:     t,
				Content:  strings.Join(args, " "),
				Sender:   "cli",
				Topic:    topic,
				Keywords: keywords,
				Source:   source,
			}
			if cmd.Flags().Changed("confidence") {
				req.Confidence = &confidence
			}

			id, err := store.Store(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}

	cmd.Flags().StringVar(&memType, "type", string(contractx.MemoryConversation), "Memory type: conversation, knowledge or agent_state")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic label")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Keywords (default: extracted from content)")
	cmd.Flags().StringVar(&source, "source", "", "Source of the memory")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.5, "Confidence in [0,1]")
	return cmd
}

func newMemoryGetCmd() *cobra.Command {
	var (
		memType string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a record by id, or the most recent records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := contractx.ParseMemoryType(memType)
			if err != nil {
				return err
			}
			store, _, err := wireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			req := contractx.RetrieveRequest{Type: t, Limit: limit}
			if len(args) == 1 {
				req.ID = args[0]
			}
			records, err := store.Retrieve(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}

			hits := make([]contractx.MemoryHit, 0, len(records))
			for _, r := range records {
				hits = append(hits, contractx.MemoryHit{ID: r.ID, Content: r.Content, Metadata: r.Metadata})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderHits(hits))
			return err
		},
	}

	cmd.Flags().StringVar(&memType, "type", string(contractx.MemoryConversation), "Memory type: conversation, knowledge or agent_state")
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of recent records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func newMemorySearchCmd() *cobra.Command {
	var (
		memType  string
		limit    int
		topic    string
		keywords []string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search memories by similarity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := contractx.ParseMemoryType(memType)
			if err != nil {
				return err
			}
			store, _, err := wireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			hits, err := store.Search(cmd.Context(), contractx.SearchRequest{
				Query:    strings.Join(args, " "),
				Type:     t,
				Limit:    limit,
				Topic:    topic,
				Keywords: keywords,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contractx.NewMemoryContext(hits))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderHits(hits))
			return err
		},
	}

	cmd.Flags().StringVar(&memType, "type", string(contractx.MemoryConversation), "Memory type: conversation, knowledge or agent_state")
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum number of hits")
	cmd.Flags().StringVar(&topic, "topic", "", "Only return memories with this topic")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "Hits must share at least one keyword")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print hits as JSON")
	return cmd
}

func newMemoryStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show record counts per memory partition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := wireStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}
