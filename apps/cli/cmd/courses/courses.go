package courses

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	generationrepo "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/repo"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/awsx"
)

// Command groups stored-course inspection helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Inspect stored course records",
	}

	cmd.AddCommand(lookupCommand())
	return cmd
}

func lookupCommand() *cobra.Command {
	var (
		email          string
		topicID        string
		region         string
		dynamoEndpoint string
		courseTable    string
	)

	c := &cobra.Command{
		Use:   "lookup",
		Short: "Check whether a course record exists for an owner and topic",
		Long:  "Performs the same dedup-key lookup generate_icp uses: owner email (lowercased) plus topic id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			clients, err := awsx.NewClients(ctx, awsx.Config{
				Region:         region,
				DynamoEndpoint: dynamoEndpoint,
			})
			if err != nil {
				return fmt.Errorf("init aws clients: %w", err)
			}
			store := generationrepo.NewDynamoDedupStore(clients.Dynamo, courseTable)

			owner := strings.ToLower(strings.TrimSpace(email))
			exists, err := store.Exists(ctx, owner, topicID)
			if err != nil {
				return fmt.Errorf("look up course %s/%s: %w", owner, topicID, err)
			}

			if exists {
				fmt.Fprintf(cmd.OutOrStdout(), "course %s/%s: stored\n", owner, topicID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "course %s/%s: absent\n", owner, topicID)
			}
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "Owner email")
	c.Flags().StringVar(&topicID, "topic-id", "", "Topic id")
	c.Flags().StringVar(&region, "region", "us-west-2", "AWS region")
	c.Flags().StringVar(&dynamoEndpoint, "dynamo-endpoint", "", "DynamoDB endpoint override (DynamoDB Local)")
	c.Flags().StringVar(&courseTable, "icp-table", "ICP", "Course record table name")

	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("topic-id")

	return c
}
