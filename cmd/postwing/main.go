// Postwing - a bot that mirrors social media threads into chats.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postwing/postwing/cmd/postwing/internal"
	"github.com/postwing/postwing/cmd/postwing/internal/gateway"
	"github.com/postwing/postwing/cmd/postwing/internal/onboard"
	"github.com/postwing/postwing/cmd/postwing/internal/version"
)

func NewPostwingCommand() *cobra.Command {
	short := fmt.Sprintf("%s postwing - thread mirror bot v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "postwing",
		Short:   short,
		Example: "postwing gateway",
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		gateway.NewGatewayCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewPostwingCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
