package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/spf13/cobra"
)

var (
	requestData      string
	requestParams    []string
	requestAnonymous bool
)

var requestCmd = &cobra.Command{
	Use:   "request <METHOD> <endpoint>",
	Short: "Send a raw request through the session",
	Long: `Send a request to any backend endpoint with the session's token. A 401 is
refreshed and retried once, like every other command.

Example:
  portal request GET /courses/search --param q=data
  portal request PUT /admin/students/7/status --data '{"status":"ACTIVE"}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return runRequest(cmd.Context(), a, args[0], args[1])
		})
	},
}

func init() {
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "JSON request body")
	requestCmd.Flags().StringArrayVar(&requestParams, "param", nil, "Query parameter key=value, repeatable")
	requestCmd.Flags().BoolVar(&requestAnonymous, "anonymous", false, "Send without the bearer token")
	rootCmd.AddCommand(requestCmd)
}

func runRequest(ctx context.Context, a *app, method, endpoint string) error {
	opts := apiclient.RequestOptions{Method: strings.ToUpper(method), Anonymous: requestAnonymous}
	if requestData != "" {
		if !json.Valid([]byte(requestData)) {
			return fmt.Errorf("--data is not valid JSON")
		}
		opts.Body = json.RawMessage(requestData)
	}
	if len(requestParams) > 0 {
		opts.Params = url.Values{}
		for _, p := range requestParams {
			k, v, ok := strings.Cut(p, "=")
			if !ok {
				return fmt.Errorf("--param %q is not key=value", p)
			}
			opts.Params.Add(k, v)
		}
	}

	body, err := a.session.Client().Request(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	_, err = fmt.Fprintln(a.out, string(body))
	return err
}
