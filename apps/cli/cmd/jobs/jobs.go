package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	generationrepo "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/repo"
	generationservice "github.com/sharath-reddy374/teacher-dashboard-backend-apis/domains/generation/be/service"
	"github.com/sharath-reddy374/teacher-dashboard-backend-apis/platform/go/awsx"
)

// Command groups test-series job inspection helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect test-series generation jobs",
		Long:  "Read generation job records straight from the job tables, the same way the API's poll loop does.",
	}

	cmd.AddCommand(statusCommand())
	return cmd
}

func statusCommand() *cobra.Command {
	var (
		jobID          string
		email          string
		region         string
		dynamoEndpoint string
		quizTable      string
		userJobTable   string
		wait           bool
		interval       time.Duration
		attempts       int
	)

	c := &cobra.Command{
		Use:   "status",
		Short: "Show a generation job's completion status",
		Long:  "Reads the job record once, or keeps polling with --wait until the job finishes or the attempt budget runs out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			clients, err := awsx.NewClients(ctx, awsx.Config{
				Region:         region,
				DynamoEndpoint: dynamoEndpoint,
			})
			if err != nil {
				return fmt.Errorf("init aws clients: %w", err)
			}
			store := generationrepo.NewDynamoJobStore(clients.Dynamo, quizTable, userJobTable)

			lookup := func() (generationservice.Job, error) {
				if email != "" {
					return store.GetUserJob(ctx, email, jobID)
				}
				return store.GetPredefinedJob(ctx, jobID)
			}

			for attempt := 1; ; attempt++ {
				job, err := lookup()
				if errors.Is(err, generationservice.ErrJobNotFound) {
					return fmt.Errorf("job %s not found", jobID)
				}
				if err != nil {
					return fmt.Errorf("read job %s: %w", jobID, err)
				}

				if job.Generated == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "job %s: record carries no completion flag\n", jobID)
					return nil
				}
				if *job.Generated {
					fmt.Fprintf(cmd.OutOrStdout(), "job %s: done (title: %s)\n", jobID, job.Title)
					return nil
				}

				if !wait || attempt >= attempts {
					fmt.Fprintf(cmd.OutOrStdout(), "job %s: still generating\n", jobID)
					return nil
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(interval):
				}
			}
		},
	}

	c.Flags().StringVar(&jobID, "id", "", "Generation job id")
	c.Flags().StringVar(&email, "email", "", "Owner email for user-scoped jobs (omit for predefined jobs)")
	c.Flags().StringVar(&region, "region", "us-west-2", "AWS region")
	c.Flags().StringVar(&dynamoEndpoint, "dynamo-endpoint", "", "DynamoDB endpoint override (DynamoDB Local)")
	c.Flags().StringVar(&quizTable, "quiz-table", "Question", "Predefined job table name")
	c.Flags().StringVar(&userJobTable, "user-itp-table", "User_Infinite_TestSeries", "User-scoped job table name")
	c.Flags().BoolVar(&wait, "wait", false, "Keep polling until the job finishes")
	c.Flags().DurationVar(&interval, "interval", 3*time.Second, "Poll interval used with --wait")
	c.Flags().IntVar(&attempts, "attempts", 80, "Maximum poll attempts used with --wait")

	_ = c.MarkFlagRequired("id")

	return c
}
