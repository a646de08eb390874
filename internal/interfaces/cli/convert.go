package cli

import (
	"github.com/spf13/cobra"

	"github.com/cheminee/search-engine/internal/schema"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Standardize and convert molecular representations",
	}
	cmd.AddCommand(newStandardizeCmd(), newMolToSMILESCmd(), newSMILESToMolCmd())
	return cmd
}

func newStandardizeCmd() *cobra.Command {
	var smiles string
	var attemptFix bool

	cmd := &cobra.Command{
		Use:   "standardize",
		Short: "Standardize a SMILES string to its canonical form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			mol, err := cliCtx.Deps.Preparer.Standardize(smiles, attemptFix)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string]string{"smiles": cliCtx.Deps.Engine.Canonicalize(mol)})
		},
	}
	cmd.Flags().StringVar(&smiles, "smiles", "", "input SMILES string (required)")
	cmd.Flags().BoolVar(&attemptFix, "attempt-fix", false, "attempt to repair malformed valence/charge before standardizing")
	cmd.MarkFlagRequired("smiles")
	return cmd
}

func newMolToSMILESCmd() *cobra.Command {
	var molBlock string

	cmd := &cobra.Command{
		Use:   "mol-to-smiles",
		Short: "Convert a V2000/V3000 mol block to SMILES",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			mol, err := cliCtx.Deps.Engine.FromMolBlock(molBlock)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string]string{"smiles": cliCtx.Deps.Engine.AsSMILES(mol)})
		},
	}
	cmd.Flags().StringVar(&molBlock, "mol-block", "", "mol block text (required)")
	cmd.MarkFlagRequired("mol-block")
	return cmd
}

func newSMILESToMolCmd() *cobra.Command {
	var smiles string

	cmd := &cobra.Command{
		Use:   "smiles-to-mol",
		Short: "Convert a SMILES string to a V2000 mol block",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, ok := GetCLIContext(cmd)
			if !ok {
				return errNoCLIContext
			}
			mol, err := cliCtx.Deps.Engine.Parse(smiles)
			if err != nil {
				return err
			}
			return PrintResult(cmd, map[string]string{"mol_block": cliCtx.Deps.Engine.ToMolBlock(mol)})
		},
	}
	cmd.Flags().StringVar(&smiles, "smiles", "", "input SMILES string (required)")
	cmd.MarkFlagRequired("smiles")
	return cmd
}

func newSchemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the built-in document schemas available to create-index",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := schema.List()
			defs := make([]schema.Definition, 0, len(names))
			for _, name := range names {
				def, _ := schema.Get(name)
				defs = append(defs, def)
			}
			return PrintResult(cmd, defs)
		},
	}
}
