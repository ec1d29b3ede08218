package gmlgen

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/CognitoIQ/xsd2gml/diff"
	"github.com/CognitoIQ/xsd2gml/internal/commandline"
	"github.com/CognitoIQ/xsd2gml/xmltree"
)

func parseRule(s string) (Option, error) {
	rule, err := commandline.ParseReplaceRule(s)
	if err != nil {
		return nil, err
	}
	return Rename(rule.From.String(), rule.To), nil
}

// Run executes the xsd2gml command with the given arguments, not
// including the program name. Options read from a --config file and
// from flags are applied on top of cfg.
func (cfg *Config) Run(arguments ...string) error {
	cmd := cfg.command(new(Loader))
	cmd.SetArgs(arguments)
	return cmd.Execute()
}

type cliState struct {
	cfg        *Config
	loader     *Loader
	configFile string
	verbose    int
	prefix     string
	namespace  string
	output     string
}

func (cfg *Config) command(l *Loader) *cobra.Command {
	st := &cliState{cfg: cfg, loader: l}
	root := &cobra.Command{
		Use:           "xsd2gml",
		Short:         "Convert XML Schema to GML 3.2 application schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.configure()
		},
	}
	root.PersistentFlags().StringVar(&st.configFile, "config", "", "YAML configuration file")
	root.PersistentFlags().CountVarP(&st.verbose, "verbose", "v", "increase logging verbosity")
	root.AddCommand(
		st.newConvertCmd(),
		st.newMergeCmd(),
		st.newDiffCmd(),
		st.newPatchCmd(),
	)
	return root
}

// configure applies the configuration file, then the shared flags.
func (st *cliState) configure() error {
	if st.configFile != "" {
		f, err := ReadFile(st.configFile)
		if err != nil {
			return err
		}
		opts, err := f.Options()
		if err != nil {
			return err
		}
		st.cfg.Option(opts...)
	}
	if st.verbose > 0 {
		st.cfg.Option(LogLevel(st.verbose))
	}
	if st.prefix != "" || st.namespace != "" {
		prefix, uri := st.cfg.target.Prefix, st.cfg.target.URI
		if st.prefix != "" {
			prefix = st.prefix
		}
		if st.namespace != "" {
			uri = st.namespace
		}
		st.cfg.Option(TargetNamespace(prefix, uri))
	}
	return nil
}

func (st *cliState) targetFlags(fs *pflag.FlagSet) {
	fs.StringVar(&st.prefix, "prefix", "", "prefix of the target namespace")
	fs.StringVar(&st.namespace, "namespace", "", "target namespace URI")
}

func (st *cliState) outputFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&st.output, "output", "o", "", "output file (default stdout)")
}

func (st *cliState) write(cmd *cobra.Command, data []byte) error {
	if st.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(st.output, data, 0666)
}

// patch completes tree from the reference schema, if one is given.
func (st *cliState) patch(tree *xmltree.Element, reference, reportFile string) (*xmltree.Element, error) {
	if reference == "" {
		return tree, nil
	}
	ref, err := st.loader.Load(reference)
	if err != nil {
		return nil, err
	}
	var report []string
	if reportFile != "" {
		data, err := os.ReadFile(reportFile)
		if err != nil {
			return nil, err
		}
		report = diff.ParseReport(string(data))
	}
	return st.cfg.Patch(report, tree, ref)
}

func (st *cliState) newConvertCmd() *cobra.Command {
	var (
		roots             commandline.Strings
		rename            commandline.ReplaceRuleList
		reference, report string
	)
	cmd := &cobra.Command{
		Use:   "convert [flags] input...",
		Short: "Convert schema files, directories or URLs into a GML application schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(roots) > 0 {
				st.cfg.Option(RootTypes(roots...))
			}
			for _, r := range rename {
				st.cfg.Option(Rename(r.From.String(), r.To))
			}
			docs, err := st.loader.LoadAll(args...)
			if err != nil {
				return err
			}
			tree, err := st.cfg.Convert(docs...)
			if err != nil {
				return err
			}
			if tree, err = st.patch(tree, reference, report); err != nil {
				return err
			}
			return st.write(cmd, st.cfg.Output(tree))
		},
	}
	fs := cmd.Flags()
	fs.Var(&roots, "root", "root complex type (can be used multiple times)")
	fs.Var(&rename, "rename", "output rule 'regex -> repl' (can be used multiple times)")
	fs.StringVar(&reference, "reference", "", "reference schema to complete the output from")
	fs.StringVar(&report, "report", "", "difference report; computed if not given")
	st.targetFlags(fs)
	st.outputFlag(fs)
	return cmd
}

func (st *cliState) newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [flags] input...",
		Short: "Merge schema documents into one target namespace",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := st.loader.LoadAll(args...)
			if err != nil {
				return err
			}
			tree, err := st.cfg.Merge(docs...)
			if err != nil {
				return err
			}
			return st.write(cmd, st.cfg.Output(tree))
		},
	}
	st.targetFlags(cmd.Flags())
	st.outputFlag(cmd.Flags())
	return cmd
}

func (st *cliState) newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff target origin",
		Short: "List the nodes of target that origin lacks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := st.loader.Load(args[0])
			if err != nil {
				return err
			}
			origin, err := st.loader.Load(args[1])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), diff.FormatReport(st.cfg.Diff(target, origin)))
			return err
		},
	}
}

func (st *cliState) newPatchCmd() *cobra.Command {
	var reference, report string
	cmd := &cobra.Command{
		Use:   "patch --reference src [flags] input",
		Short: "Complete a generated schema from a reference schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := st.loader.Load(args[0])
			if err != nil {
				return err
			}
			if tree, err = st.patch(tree, reference, report); err != nil {
				return err
			}
			return st.write(cmd, st.cfg.Output(tree))
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&reference, "reference", "", "reference schema")
	fs.StringVar(&report, "report", "", "difference report; computed if not given")
	st.targetFlags(fs)
	st.outputFlag(fs)
	cmd.MarkFlagRequired("reference")
	return cmd
}
