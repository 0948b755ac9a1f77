package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// paramFlags are the TOTP tunables shared by code, verify and uri.
type paramFlags struct {
	secret    string
	digits    int
	period    int
	algorithm string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.secret, "secret", "", "Base32 shared secret (required)")
	cmd.Flags().IntVar(&p.digits, "digits", totp.DefaultDigits, "Code length")
	cmd.Flags().IntVar(&p.period, "period", totp.DefaultPeriod, "Seconds per code")
	cmd.Flags().StringVar(&p.algorithm, "algorithm", string(totp.DefaultAlgorithm), "SHA1, SHA256 or SHA512")
	_ = cmd.MarkFlagRequired("secret")
}

func (p *paramFlags) params(window int) (totp.Params, error) {
	if err := validator.Apply(validator.ValidBase32Secret("secret", p.secret)); err != nil {
		return totp.Params{}, err
	}
	alg, err := totp.ParseAlgorithm(p.algorithm)
	if err != nil {
		return totp.Params{}, err
	}
	params := totp.Params{Digits: p.digits, Period: p.period, Window: window, Algorithm: alg}
	return params, params.Validate()
}

// parseAt reads --at; empty means now.
func parseAt(at string) (int64, error) {
	if at == "" {
		return time.Now().Unix(), nil
	}
	return totp.ParseTimestamp(at)
}

func codeCommand() *cobra.Command {
	var p paramFlags
	var at string
	var offset int

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Print the code for a secret",
		Example: `  twofactor code --secret KS72XBTN5PEBGX2IWBMVW44LXHPAQ7L3
  twofactor code --secret KS72XBTN5PEBGX2IWBMVW44LXHPAQ7L3 --at "2020-01-01 20:30:00" --offset -1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := p.params(0)
			if err != nil {
				return err
			}
			key, err := totp.DecodeSecret(p.secret)
			if err != nil {
				return err
			}
			ts, err := parseAt(at)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), totp.GenerateCode(key, params, ts, offset))
			return nil
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&at, "at", "", "Unix seconds or a date (default: now)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Shift by whole periods")
	return cmd
}

func verifyCommand() *cobra.Command {
	var p paramFlags
	var at, code string
	var window int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a code against a secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := p.params(window)
			if err != nil {
				return err
			}
			key, err := totp.DecodeSecret(p.secret)
			if err != nil {
				return err
			}
			ts, err := parseAt(at)
			if err != nil {
				return err
			}
			if validator.Apply(validator.ValidOTPCode("code", code, params.Digits)) != nil ||
				!totp.ValidateCode(key, params, code, ts, params.Window) {
				return errInvalidCode
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&code, "code", "", "Code to check (required)")
	cmd.Flags().StringVar(&at, "at", "", "Unix seconds or a date (default: now)")
	cmd.Flags().IntVar(&window, "window", totp.DefaultWindow, "Past periods still accepted")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func uriCommand() *cobra.Command {
	var p paramFlags
	var label, issuer, qrPath string
	var qrSize int

	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Print the otpauth provisioning URI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := p.params(0)
			if err != nil {
				return err
			}
			uri, err := totp.BuildURI(totp.URIParams{
				Secret:    totp.NormalizeSecret(p.secret),
				Label:     label,
				Issuer:    issuer,
				Algorithm: params.Algorithm,
				Digits:    params.Digits,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)

			if qrPath == "" {
				return nil
			}
			png, err := qrcode.Generate(uri, qrSize)
			if err != nil {
				return err
			}
			return os.WriteFile(qrPath, png, 0o600)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&label, "label", "", "Account label, usually an email (required)")
	cmd.Flags().StringVar(&issuer, "issuer", "", "Service name shown by authenticator apps (required)")
	cmd.Flags().StringVar(&qrPath, "qr", "", "Also write the QR code as PNG to this file")
	cmd.Flags().IntVar(&qrSize, "qr-size", 400, "QR image size in pixels")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("issuer")
	return cmd
}
