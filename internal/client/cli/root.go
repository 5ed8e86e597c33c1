package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/communitysync/internal/client/iocli"
	"github.com/iudanet/communitysync/internal/config"
)

// BuildInfo информация о сборке, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// NewRootCommand создает дерево команд клиента
func NewRootCommand(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "communitysync",
		Short: "Realtime community client",
		Long: `communitysync keeps a local copy of community data (chat, posts, groups,
friendships, direct messages) synchronized with the server in near real time.

Configuration priority: flags, COMMUNITYSYNC_* environment variables,
config file (--config), defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newWatchCommand(),
		newListCommand(),
		newGetCommand(),
		newSendCommand(),
		newPostCommand(),
		newCommentCommand(),
		newLikeCommand(),
		newDeleteCommand(),
		newDMCommand(),
		newFriendCommand(),
		newJoinCommand(),
		newEditCommand(),
		newSyncCommand(),
		newStatusCommand(),
		newVersionCommand(info),
	)
	return root
}

// runWith загружает конфигурацию, собирает зависимости и выполняет команду
func runWith(cmd *cobra.Command, push bool, fn func(ctx context.Context, c *Cli) error) error {
	cfg, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, push, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	c := New(iocli.NewStreams(cmd.InOrStdin(), cmd.OutOrStdout()), a.engine, a.client, a.metadata(), cfg.Token, cfg.UserID)
	return fn(ctx, c)
}

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [collection...]",
		Short: "Stream changes from the push channel (all collections by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, true, func(ctx context.Context, c *Cli) error {
				return c.runWatch(ctx, args)
			})
		},
	}
}

func newListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Fetch and show records of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runList(ctx, args[0], limit)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", DefaultListLimit, "Show only the last N records (0 shows all)")
	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <id>",
		Short: "Show all fields of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runGet(ctx, args[0], args[1])
			})
		},
	}
}

func newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send [text...]",
		Short: "Send a chat message (reads stdin when text is omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runSend(ctx, args)
			})
		},
	}
}

func newPostCommand() *cobra.Command {
	var groupID, imageURL string
	cmd := &cobra.Command{
		Use:   "post [text...]",
		Short: "Publish a post to the feed or to a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runPost(ctx, args, groupID, imageURL)
			})
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "Group ID to post to")
	cmd.Flags().StringVar(&imageURL, "image", "", "Image URL attached to the post")
	return cmd
}

func newCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> [text...]",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runComment(ctx, args[0], args[1:])
			})
		},
	}
}

func newLikeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runLike(ctx, args[0])
			})
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete a record (unlike, leave group, remove post)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runDelete(ctx, args[0], args[1])
			})
		},
	}
}

func newDMCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dm <user-id> [text...]",
		Short: "Send a direct message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runDM(ctx, args[0], args[1:])
			})
		},
	}
}

func newFriendCommand() *cobra.Command {
	friend := &cobra.Command{
		Use:   "friend",
		Short: "Manage friend requests",
	}

	friend.AddCommand(
		&cobra.Command{
			Use:   "request <user-id>",
			Short: "Send a friend request",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
					return c.runFriendRequest(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "accept <friendship-id>",
			Short: "Accept a friend request",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
					return c.runFriendAccept(ctx, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "cancel <friendship-id>",
			Short: "Cancel a friend request or remove a friend",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
					return c.runFriendCancel(ctx, args[0])
				})
			},
		},
	)
	return friend
}

func newJoinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "join <group-id>",
		Short: "Join a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runJoin(ctx, args[0])
			})
		},
	}
}

func newEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <post-id> [text...]",
		Short: "Edit the text of a post (reads stdin when text is omitted)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runEdit(ctx, args[0], args[1:])
			})
		},
	}
}

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch all collections into the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runSync(ctx)
			})
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, server and local store status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, false, func(ctx context.Context, c *Cli) error {
				return c.runStatus(ctx)
			})
		},
	}
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "communitysync client\n")
			_, _ = fmt.Fprintf(out, "Version:    %s\n", info.Version)
			_, _ = fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(out, "Git Commit: %s\n", info.GitCommit)
		},
	}
}
