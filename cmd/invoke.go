package main

import (
	"encoding/json"
	"fmt"

	"github.com/dekho-agent/device-bridge/internal/bridge"
	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/dekho-agent/device-bridge/internal/identity"
	"github.com/dekho-agent/device-bridge/internal/utils"
	"github.com/spf13/cobra"
)

func newInvokeCommand(configPath *string) *cobra.Command {
	var (
		channelName string
		args        string
	)

	cmd := &cobra.Command{
		Use:   "invoke <method>",
		Short: "Invoke a method on a channel in-process and print the reply envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			ctx := cmd.Context()
			cm, warnings, err := utils.InitConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, log := utils.InitLogger(ctx, cm, warnings)

			if channelName == "" {
				channelName = cm.GetChannelName()
			}

			reader, err := identity.New(cm.GetIdentityConfig())
			if err != nil {
				return err
			}
			plugin := bridge.NewDeviceIDPlugin(reader, log, nil)
			messenger := channel.NewMessenger(nil)
			messenger.Register(bridge.NewDeviceIDChannel(cm.GetChannelName(), plugin))

			call := channel.MethodCall{Method: positional[0]}
			if args != "" {
				if !json.Valid([]byte(args)) {
					return fmt.Errorf("--args is not valid JSON")
				}
				call.Arguments = json.RawMessage(args)
			}

			payload, err := messenger.Codec().EncodeMethodCall(call)
			if err != nil {
				return err
			}
			reply, err := messenger.Dispatch(ctx, channelName, payload)
			if err != nil {
				return err
			}
			if reply == nil {
				return fmt.Errorf("no handler attached to channel %q", channelName)
			}

			resp, err := messenger.Codec().DecodeEnvelope(reply)
			if err != nil {
				return err
			}
			switch resp.Status {
			case channel.StatusNotImplemented:
				return fmt.Errorf("method %q is not implemented on channel %q", call.Method, channelName)
			case channel.StatusError:
				fmt.Fprintln(cmd.OutOrStdout(), string(reply))
				return resp.Error
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(reply))
			return nil
		},
	}
	cmd.Flags().StringVar(&channelName, "channel", "", "channel name (defaults to channel_name from config)")
	cmd.Flags().StringVar(&args, "args", "", "JSON encoded method arguments")
	return cmd
}
