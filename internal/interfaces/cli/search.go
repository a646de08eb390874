package cli

import (
	"github.com/spf13/cobra"

	"github.com/cheminee/search-engine/internal/aggregate"
	"github.com/cheminee/search-engine/internal/orchestrator"
	"github.com/cheminee/search-engine/internal/search"
	"github.com/cheminee/search-engine/internal/similarity"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search an index by query string, identity, substructure, superstructure, or similarity",
	}
	cmd.AddCommand(
		newBasicSearchCmd(),
		newStructureSearchCmd("identity", orchestrator.Identity),
		newStructureSearchCmd("substructure", orchestrator.Substructure),
		newStructureSearchCmd("superstructure", orchestrator.Superstructure),
		newSimilaritySearchCmd(),
	)
	return cmd
}

func newBasicSearchCmd() *cobra.Command {
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "basic <index>",
		Short: "Run a raw query-string search with no structural verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			candidates, err := search.Basic(cmd.Context(), cliCtx.Deps.Searcher, args[0], query, limit)
			if err != nil {
				return err
			}
			return PrintResult(cmd, candidates)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "query string (required)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum candidates to return")
	cmd.MarkFlagRequired("query")
	return cmd
}

func newStructureSearchCmd(name string, qt orchestrator.QueryType) *cobra.Command {
	var smiles, extraQuery string
	var resultLimit, tautomerLimit int
	var useScaffolds, useChirality bool

	cmd := &cobra.Command{
		Use:   name + " <index>",
		Short: name + " search against a query molecule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			deps := orchestrator.Deps{
				Preparer:  cliCtx.Deps.Preparer,
				Scaffolds: cliCtx.Deps.Scaffolds,
				Searcher:  cliCtx.Deps.Searcher,
				Engine:    cliCtx.Deps.Engine,
			}
			opts := orchestrator.Options{
				ResultLimit:   resultLimit,
				TautomerLimit: tautomerLimit,
				UseScaffolds:  useScaffolds,
				UseChirality:  useChirality,
				ExtraQuery:    extraQuery,
			}
			result, err := orchestrator.Run(cmd.Context(), deps, args[0], qt, smiles, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, aggregate.FromStructureResult(result, smiles))
		},
	}
	cmd.Flags().StringVar(&smiles, "smiles", "", "query molecule SMILES (required)")
	cmd.Flags().StringVar(&extraQuery, "extra-query", "", "additional query string ANDed onto the structural predicate")
	cmd.Flags().IntVar(&resultLimit, "result-limit", 50, "maximum matches to return")
	cmd.Flags().IntVar(&tautomerLimit, "tautomer-limit", 0, "retry via up to N tautomers when the canonical form under-returns (0 disables)")
	cmd.Flags().BoolVar(&useScaffolds, "use-scaffolds", true, "restrict candidates by registered scaffold membership")
	cmd.Flags().BoolVar(&useChirality, "use-chirality", false, "accepted for interface parity; the kernel has no stereocenter model")
	cmd.MarkFlagRequired("smiles")
	return cmd
}

func newSimilaritySearchCmd() *cobra.Command {
	var smiles, extraQuery string
	var resultLimit, tautomerLimit int
	var searchPercent, tanimotoMinimum float64

	cmd := &cobra.Command{
		Use:   "similarity <index>",
		Short: "Tanimoto-ranked similarity search against a query molecule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			prepped, err := cliCtx.Deps.Preparer.Process(smiles)
			if err != nil {
				return err
			}
			deps := similarity.Deps{
				Engine:   cliCtx.Deps.Engine,
				Searcher: cliCtx.Deps.Searcher,
				Encoder:  cliCtx.Deps.Encoder,
			}
			opts := similarity.Options{
				TautomerLimit:   tautomerLimit,
				SearchPercent:   searchPercent,
				TanimotoMinimum: tanimotoMinimum,
				ResultLimit:     resultLimit,
				ExtraQuery:      extraQuery,
			}
			hits, err := similarity.Search(cmd.Context(), deps, args[0], prepped.Mol, opts)
			if err != nil {
				return err
			}
			return PrintResult(cmd, aggregate.FromSimilarityHits(hits, smiles, tautomerLimit > 0))
		},
	}
	cmd.Flags().StringVar(&smiles, "smiles", "", "query molecule SMILES (required)")
	cmd.Flags().StringVar(&extraQuery, "extra-query", "", "additional query string ANDed onto every cluster search")
	cmd.Flags().IntVar(&resultLimit, "result-limit", 50, "maximum hits to return")
	cmd.Flags().IntVar(&tautomerLimit, "tautomer-limit", 0, "number of tautomers to fan out cluster search across (0 uses only the canonical form)")
	cmd.Flags().Float64Var(&searchPercent, "search-percent", similarity.DefaultSearchPercent, "percentage of clusters to search, ranked by the encoder (0.1 means 0.1%)")
	cmd.Flags().Float64Var(&tanimotoMinimum, "tanimoto-minimum", similarity.DefaultTanimotoMinimum, "minimum Tanimoto score a candidate must reach to be returned")
	cmd.MarkFlagRequired("smiles")
	return cmd
}
