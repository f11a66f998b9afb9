package cmd

import (
	"fmt"
	"io"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rdharma/folio/internal/config"
	"github.com/rdharma/folio/internal/config/autoconfig"
	"github.com/rdharma/folio/internal/post"
	"github.com/rdharma/folio/internal/term"
)

func postsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "posts",
		Short: "Manage blog posts.",
	}

	cmd.AddCommand(postsListCmd())
	cmd.AddCommand(postsPublishCmd(true))
	cmd.AddCommand(postsPublishCmd(false))
	cmd.AddCommand(postsDeleteCmd())

	return &cmd
}

func postsListCmd() *cobra.Command {
	var filter string

	cmd := cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List posts, newest first.",
		Example: `List published posts by one author:
  folio posts list --filter 'published && author == "Ryan Dharma"'

List long posts:
  folio posts list --filter 'words > 500'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokePosts(func(svc *post.Service, logger *zap.Logger) error {
				var filters []*config.Filter
				if filter != "" {
					filters = append(filters, config.NewPostFilter(filter))
				}

				posts, err := svc.List(cmd.Context(), post.ListOptions{}, filters...)
				if err != nil {
					return err
				}
				logger.Debug("listed posts", zap.Int("count", len(posts)))

				return renderPostsTable(cmd.OutOrStdout(), posts)
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Expression selecting posts. Fields: id, title, slug, author, published, has_cover, words, created_at.")

	return &cmd
}

func postsPublishCmd(published bool) *cobra.Command {
	use, short := "publish <id>", "Publish a post."
	if !published {
		use, short = "unpublish <id>", "Move a post back to drafts."
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokePosts(func(svc *post.Service, logger *zap.Logger) error {
				p, err := svc.SetPublished(cmd.Context(), args[0], published)
				if err != nil {
					return errors.Wrapf(err, "post %q", args[0])
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p.Slug, p.Status())
				return err
			})
		},
	}
}

func postsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a post.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokePosts(func(svc *post.Service, logger *zap.Logger) error {
				p, err := svc.Delete(cmd.Context(), args[0])
				if err != nil {
					return errors.Wrapf(err, "post %q", args[0])
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", p.Slug)
				return err
			})
		},
	}
}

func invokePosts(fn func(*post.Service, *zap.Logger) error) error {
	return autoconfig.InvokeForCommand(
		func(
			svc *post.Service,
			store *post.SQLStore,
			logger *zap.Logger,
		) error {
			defer func() { _ = logger.Sync() }()
			defer func() { _ = store.Close() }()
			return fn(svc, logger)
		},
	)
}

func renderPostsTable(w io.Writer, posts []*post.Post) error {
	out := term.FromWriter(w)
	table := tableprinter.New(out, out.IsTTY(), out.Width(120))

	published := color.New(color.FgGreen).SprintFunc()
	draft := color.New(color.FgYellow).SprintFunc()

	table.AddHeader([]string{"ID", "SLUG", "TITLE", "AUTHOR", "STATUS", "CREATED"})

	for _, p := range posts {
		status := draft
		if p.Published {
			status = published
		}

		table.AddField(p.ID)
		table.AddField(p.Slug)
		table.AddField(p.Title)
		table.AddField(p.Author)
		table.AddField(p.Status(), tableprinter.WithColor(func(s string) string { return status(s) }))
		table.AddField(p.CreatedAt.Format("2006-01-02"))
		table.EndRow()
	}

	return errors.Wrap(table.Render(), "failed to render")
}
