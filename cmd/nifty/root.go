package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/transfer"
)

type rootFlags struct {
	provider string
	template string
	cfgPath  string
	strict   bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "nifty <path> <recipient>",
		Short: "Share a file or directory through a cloud provider",
		Long: `nifty packages a file or directory, uploads it to the chosen cloud
provider, emails the recipient a shareable link valid for 7 days and
records the transfer in a ledger.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(cmd, args, flags)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.cfgPath, "config", "c", "",
		"config file (default nifty.yaml in . or $HOME/.nifty)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"enable debug logging")
	cmd.Flags().StringVarP(&flags.provider, "provider", "p", "google",
		"storage provider (aws, google, minio)")
	cmd.Flags().StringVarP(&flags.template, "template", "t", transfer.DefaultTemplate,
		"mail template name within the template directory")
	cmd.Flags().BoolVar(&flags.strict, "strict", false,
		"abort without notifying when the upload fails")

	cmd.AddCommand(newHistoryCmd(flags))

	return cmd
}

func runShare(cmd *cobra.Command, args []string, flags *rootFlags) error {
	cfg, err := config.Load(flags.cfgPath)
	if err != nil {
		return err
	}

	req, err := transfer.NewRequest(args[0], args[1], flags.provider, flags.template)
	if err != nil {
		return err
	}

	opts := []transfer.Option{
		transfer.WithProgressOutput(cmd.OutOrStdout()),
	}
	if flags.strict {
		opts = append(opts, transfer.WithPolicy(transfer.PolicyAbortOnUploadFailure))
	}

	orchestrator, err := transfer.New(cfg, req, opts...)
	if err != nil {
		return err
	}

	outcome, err := orchestrator.Run(cmd.Context())
	if err != nil {
		return err
	}

	if failed := outcome.Failed(); len(failed) > 0 {
		for _, step := range failed {
			fmt.Fprintf(os.Stderr, "step %s failed: %v\n", step.Step, step.Err)
		}
		return fmt.Errorf("transfer finished with %d failed step(s)", len(failed))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Shared %s with %s\nDownload link: %s\n",
		outcome.Context.FileBasename, req.Recipient, outcome.Context.DownloadLink)
	return nil
}
