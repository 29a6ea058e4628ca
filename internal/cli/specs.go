package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chartflow/chartflow/pkg/spec"
)

// newSpecsCmd creates the specs command group managing the named-spec store.
func newSpecsCmd() *cobra.Command {
	var store storeFlags

	cmd := &cobra.Command{
		Use:   "specs",
		Short: "Manage the named-spec store",
	}
	store.register(cmd.PersistentFlags())

	cmd.AddCommand(newSpecsSaveCmd(&store))
	cmd.AddCommand(newSpecsGetCmd(&store))
	cmd.AddCommand(newSpecsListCmd(&store))
	cmd.AddCommand(newSpecsDeleteCmd(&store))

	return cmd
}

func newSpecsSaveCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> <spec-file>",
		Short: "Store a spec under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]

			s, err := spec.Load(path)
			if err != nil {
				return err
			}

			st, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Set(cmd.Context(), name, s); err != nil {
				return err
			}
			printSuccess("Saved spec %q", name)
			printDetail("%d marks, %d annotations", len(s.Marks), len(s.Annotations))
			return nil
		},
	}
}

func newSpecsGetCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a stored spec as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newSpecsListCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored spec names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				printDetail("no stored specs")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSpecsDeleteCmd(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted spec %q", args[0])
			return nil
		},
	}
}
