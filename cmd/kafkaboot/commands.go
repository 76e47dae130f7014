package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/kafkaboot/kafka"
	"github.com/kbukum/kafkaboot/logger"
	"github.com/kbukum/kafkaboot/version"
)

func (c *cli) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Discover, render the broker config and launch the broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.log.Info("kafkaboot starting", version.Get().Fields())

			b, err := c.newBootstrapper()
			if err != nil {
				return err
			}
			if code := b.Run(cmd.Context()); code != 0 {
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func (c *cli) renderCmd() *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the rendered broker config without writing it or starting the broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := c.newBootstrapper()
			if err != nil {
				return err
			}
			res, err := b.Prepare(cmd.Context())
			if err != nil {
				c.log.Error("render failed", logger.ErrorFields("render", err))
				return &exitError{code: 1}
			}
			if summary {
				res.Summary.Display(c.stderr)
			}
			_, err = fmt.Fprint(c.stdout, res.Document)
			return err
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Print the resolved values to stderr")
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the broker and report cluster metadata (container health check)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.settings.Probe
			res, err := kafka.Probe(cmd.Context(), kafka.Config{
				Brokers:       p.Brokers,
				DialTimeout:   p.DialTimeout,
				EnableTLS:     p.EnableTLS,
				TLS:           p.TLS,
				EnableSASL:    p.EnableSASL,
				SASLMechanism: p.SASLMechanism,
				Username:      p.Username,
				Password:      p.Password,
			})
			if err != nil {
				c.log.Error("broker not ready", logger.Fields(
					logger.FieldError, err.Error(),
					"failure", string(kafka.ClassifyFailure(err)),
				))
				return &exitError{code: 1}
			}

			fmt.Fprintf(c.stdout, "broker %s ready: %d broker(s), controller %d (%s)\n",
				res.Addr, len(res.Brokers), res.Controller.ID, res.Controller.Addr)
			return nil
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.stdout, version.Get().String())
		},
	}
}
