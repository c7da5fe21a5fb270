package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/gym-door-access/internal/lib/wiegand"
)

func wiegandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wiegand",
		Short: "Decode and encode 26-bit Wiegand frames",
	}
	cmd.AddCommand(wiegandDecodeCmd())
	cmd.AddCommand(wiegandEncodeCmd())
	return cmd
}

func wiegandDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [frame]",
		Short: "Extract the 24-bit code from a decimal Wiegand frame",
		Example: `  doorctl wiegand decode 36023567
  doorctl wiegand decode 2469134`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("frame must be a decimal number: %w", err)
			}
			code := wiegand.Decode(frame)
			parity := "ok"
			if frame > 1<<wiegand.FrameBits-1 || !wiegand.ParityOK(uint32(frame)) {
				parity = "mismatch"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "code: %d\nparity: %s\n", code, parity)
			return nil
		},
	}
}

func wiegandEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [code]",
		Short: "Pack a code into a decimal Wiegand frame with parity bits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("code must be a decimal number: %w", err)
			}
			frame, err := wiegand.Encode(uint32(code))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), frame)
			return nil
		},
	}
}
