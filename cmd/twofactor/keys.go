package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

func keygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a TWOFACTOR_ENCRYPTION_KEY value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := secrets.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secrets.EncodeKey(key))
			return nil
		},
	}
}

func secretCommand() *cobra.Command {
	var length int
	var grouped bool

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a Base32 shared secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := totp.GenerateSecret(length)
			if err != nil {
				return err
			}
			if grouped {
				secret = totp.GroupSecret(secret)
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", totp.DefaultSecretLength, "Secret size in bytes")
	cmd.Flags().BoolVar(&grouped, "grouped", false, "Print the secret in groups of four characters")
	return cmd
}

func recoveryCommand() *cobra.Command {
	var count, length int

	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Generate a batch of recovery codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codes, err := totp.GenerateRecoveryCodes(count, length)
			if err != nil {
				return err
			}
			for _, code := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", totp.DefaultRecoveryCodeCount, "Number of codes")
	cmd.Flags().IntVar(&length, "length", totp.DefaultRecoveryCodeLength, "Characters per code")
	return cmd
}
