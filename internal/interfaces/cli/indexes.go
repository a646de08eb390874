package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/cheminee/search-engine/internal/writer"
	"github.com/cheminee/search-engine/pkg/errors"
)

func newIndexesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Create, inspect, merge, and delete named indexes",
	}
	cmd.AddCommand(
		newListIndexesCmd(),
		newGetIndexCmd(),
		newCreateIndexCmd(),
		newDeleteIndexCmd(),
		newMergeIndexCmd(),
		newBulkIndexCmd(),
		newBulkDeleteCmd(),
	)
	return cmd
}

func newListIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			handles, err := cliCtx.Deps.Indexes.List(cmd.Context())
			if err != nil {
				return err
			}
			return PrintResult(cmd, handles)
		},
	}
}

func newGetIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show one index's catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			handle, err := cliCtx.Deps.Indexes.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, handle)
		},
	}
}

func newCreateIndexCmd() *cobra.Command {
	var schemaName, sortBy string
	var force bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new index under a built-in schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			handle, err := cliCtx.Deps.Indexes.Create(cmd.Context(), args[0], schemaName, force, sortBy)
			if err != nil {
				return err
			}
			return PrintResult(cmd, handle)
		},
	}
	cmd.Flags().StringVar(&schemaName, "schema", "", "built-in schema name, see \"cheminee schemas\" (required)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "field to bulk-sort documents by before commit")
	cmd.Flags().BoolVar(&force, "force", false, "delete and recreate if an index of this name already exists")
	cmd.MarkFlagRequired("schema")
	return cmd
}

func newDeleteIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an index and its catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			if err := cliCtx.Deps.Indexes.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return PrintResult(cmd, "deleted")
		},
	}
}

func newMergeIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <name>",
		Short: "Merge an index's segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			if err := cliCtx.Deps.Indexes.Merge(cmd.Context(), args[0]); err != nil {
				return err
			}
			return PrintResult(cmd, "merged")
		},
	}
}

func newBulkIndexCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "bulk-index <name>",
		Short: "Add records from a JSON file ({\"records\": [{\"smiles\": ..., \"extra_data\": {...}}]})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrap(err, errors.CodeParseError, "read bulk-index file")
			}
			var payload struct {
				Records []struct {
					SMILES    string                 `json:"smiles"`
					ExtraData map[string]interface{} `json:"extra_data"`
				} `json:"records"`
			}
			if err := json.Unmarshal(raw, &payload); err != nil {
				return errors.Wrap(err, errors.CodeParseError, "parse bulk-index file")
			}

			records := make([]writer.Record, len(payload.Records))
			for i, r := range payload.Records {
				records[i] = writer.Record{SMILES: r.SMILES, ExtraData: r.ExtraData}
			}
			result, err := cliCtx.Deps.NewWriter(args[0]).AddRecords(cmd.Context(), records)
			if err != nil {
				return err
			}
			return PrintResult(cmd, result)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a JSON file of records (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newBulkDeleteCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "bulk-delete <name>",
		Short: "Delete every document matching a query string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			deleted, err := cliCtx.Deps.NewWriter(args[0]).DeleteByQueryString(cmd.Context(), query)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string]int64{"deleted": deleted})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "query string selecting documents to delete (required)")
	cmd.MarkFlagRequired("query")
	return cmd
}
