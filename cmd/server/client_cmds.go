package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kpvarma/ecoas-forge-sub000/internal/client"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
)

// apiClient builds a client from the bound flags, logging in with --email
// when no token was given. A failed login is only a warning; reads can
// still fall back to sample data.
func apiClient(ctx context.Context, v *viper.Viper, stderr io.Writer) *client.Client {
	c := client.New(v.GetString("url"))
	if t := v.GetDuration("timeout"); t > 0 {
		c.HTTPClient.Timeout = t
	}
	c.Token = v.GetString("token")
	if c.Token == "" {
		if email := v.GetString("email"); email != "" {
			if _, err := c.Login(ctx, email); err != nil {
				fmt.Fprintf(stderr, "warning: login failed: %v\n", err)
			}
		}
	}
	return c
}

// pageFlags registers --page and --page-size. Unset flags leave the server
// defaults in place, so changing a filter without --page starts at page 1.
type pageFlags struct {
	page, pageSize int
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.pageSize, "page-size", 10, "rows per page (max 100)")
}

func (p *pageFlags) values(cmd *cobra.Command) (page, pageSize *int) {
	if cmd.Flags().Changed("page") {
		page = &p.page
	}
	if cmd.Flags().Changed("page-size") {
		pageSize = &p.pageSize
	}
	return page, pageSize
}

func requestsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{Use: "requests", Short: "Query and act on CoA requests"}
	cmd.AddCommand(requestsListCmd(v), requestsGetCmd(v))

	var comment string
	approve := requestActionCmd(v, "approve", "Approve a document", func(ctx context.Context, rc *client.RequestsClient, id string) client.Result[model.Request] {
		return rc.Approve(ctx, id, comment)
	})
	approve.Flags().StringVar(&comment, "comment", "", "review comment")

	var reason string
	reject := requestActionCmd(v, "reject", "Reject a document", func(ctx context.Context, rc *client.RequestsClient, id string) client.Result[model.Request] {
		return rc.Reject(ctx, id, reason)
	})
	reject.Flags().StringVar(&reason, "comment", "", "rejection reason (required)")
	_ = reject.MarkFlagRequired("comment")

	var owner string
	assign := requestActionCmd(v, "assign", "Assign a document to a user", func(ctx context.Context, rc *client.RequestsClient, id string) client.Result[model.Request] {
		return rc.Assign(ctx, id, owner)
	})
	assign.Flags().StringVar(&owner, "owner", "", "owner user id (required)")
	_ = assign.MarkFlagRequired("owner")

	retry := requestActionCmd(v, "retry", "Send a document back for another review", func(ctx context.Context, rc *client.RequestsClient, id string) client.Result[model.Request] {
		return rc.Retry(ctx, id)
	})

	cmd.AddCommand(approve, reject, assign, retry)
	return cmd
}

func requestsListCmd(v *viper.Viper) *cobra.Command {
	var (
		q      model.RequestQuery
		paging pageFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List request envelopes",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Page, q.PageSize = paging.values(cmd)
			res := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Requests().List(cmd.Context(), q)
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), res.Value)
			}
			renderRequests(cmd.OutOrStdout(), res.Value.Rows)
			renderPagination(cmd.OutOrStdout(), res.Value.Pagination)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Search, "search", "", "free text search")
	f.StringVar(&q.Status, "status", "", "aggregate status")
	f.StringVar(&q.RequestStatus, "request-status", "", "document processing status")
	f.StringVar(&q.OwnerStatus, "owner-status", "", "approval status")
	f.StringVar(&q.Owner, "owner", "", "owner name or id")
	f.StringVar(&q.PlantID, "plant", "", "plant id")
	f.StringVar(&q.PartNumber, "part", "", "part number")
	f.StringSliceVar(&q.Expanded, "expand", nil, "envelope ids to expand (repeatable or comma separated)")
	f.BoolVar(&q.StrictPageSize, "strict", false, "count documents toward the page size")
	paging.register(cmd)
	return cmd
}

func requestsGetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a request with its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Requests().Get(cmd.Context(), args[0])
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), res.Value)
			}
			renderRequest(cmd.OutOrStdout(), res.Value)
			return nil
		},
	}
}

func requestActionCmd(v *viper.Viper, use, short string, act func(context.Context, *client.RequestsClient, string) client.Result[model.Request]) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Requests()
			res := act(cmd.Context(), rc, args[0])
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), res.Value)
			}
			renderRequest(cmd.OutOrStdout(), res.Value)
			return nil
		},
	}
}

func templatesCmd(v *viper.Viper) *cobra.Command {
	var (
		q      model.TemplateQuery
		paging pageFlags
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Page, q.PageSize = paging.values(cmd)
			res := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Templates().List(cmd.Context(), q)
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), res.Value)
			}
			renderTemplates(cmd.OutOrStdout(), res.Value.Items)
			renderPagination(cmd.OutOrStdout(), res.Value.Pagination)
			return nil
		},
	}
	f := list.Flags()
	f.StringVar(&q.Search, "search", "", "free text search")
	f.StringVar(&q.Status, "status", "", "record status")
	f.StringVar(&q.PlantID, "plant", "", "plant id")
	f.StringVar(&q.PartNumber, "part", "", "part number")
	f.StringVar(&q.HINTL, "hintl", "", "HINTL filter (yes or no)")
	f.BoolVar(&q.IncludeDeleted, "include-deleted", false, "include soft deleted templates")
	paging.register(list)

	xml := &cobra.Command{
		Use:   "xml <id>",
		Short: "Print the XML document of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Templates().XML(cmd.Context(), args[0])
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			_, err := cmd.OutOrStdout().Write(res.Value)
			return err
		},
	}

	cmd := &cobra.Command{Use: "templates", Short: "Query CoA templates"}
	cmd.AddCommand(list, xml)
	return cmd
}

func responsibilitiesCmd(v *viper.Viper) *cobra.Command {
	var (
		q      model.ResponsibilityQuery
		paging pageFlags
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List responsibilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Page, q.PageSize = paging.values(cmd)
			res := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Responsibilities().List(cmd.Context(), q)
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), res.Value)
			}
			renderResponsibilities(cmd.OutOrStdout(), res.Value.Items)
			renderPagination(cmd.OutOrStdout(), res.Value.Pagination)
			return nil
		},
	}
	f := list.Flags()
	f.StringVar(&q.Search, "search", "", "free text search")
	f.StringVar(&q.Status, "status", "", "record status")
	f.StringVar(&q.UserID, "user", "", "user id")
	f.StringVar(&q.PartNumber, "part", "", "part number")
	f.StringVar(&q.PlantID, "plant", "", "plant id")
	paging.register(list)

	cmd := &cobra.Command{Use: "responsibilities", Short: "Query user responsibilities"}
	cmd.AddCommand(list)
	return cmd
}

func usersCmd(v *viper.Viper) *cobra.Command {
	var (
		q      model.UserQuery
		paging pageFlags
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Page, q.PageSize = paging.values(cmd)
			res := apiClient(cmd.Context(), v, cmd.ErrOrStderr()).Users().List(cmd.Context(), q)
			if err := checkResult(cmd.ErrOrStderr(), res); err != nil {
				return err
			}
			if v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), res.Value)
			}
			renderUsers(cmd.OutOrStdout(), res.Value.Items)
			renderPagination(cmd.OutOrStdout(), res.Value.Pagination)
			return nil
		},
	}
	f := list.Flags()
	f.StringVar(&q.Search, "search", "", "free text search")
	f.StringVar(&q.Role, "role", "", "role")
	f.StringVar(&q.Department, "department", "", "department")
	paging.register(list)

	cmd := &cobra.Command{Use: "users", Short: "Query users"}
	cmd.AddCommand(list)
	return cmd
}
