package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/QinMou000/SuiJi/pkg/store"
)

var countdownsCmd = &cobra.Command{
	Use:   "countdowns",
	Short: "Manage countdown and anniversary events",
	Long:  `Provides commands for creating, listing, and deleting countdown and anniversary events.`,
}

var countdownCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a countdown or anniversary event",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		cdType, _ := cmd.Flags().GetString("type")
		dateStr, _ := cmd.Flags().GetString("date")
		note, _ := cmd.Flags().GetString("note")

		date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --date, expected YYYY-MM-DD: %w", err)
		}

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		countdown, err := s.SaveCountdown(cmd.Context(), store.Countdown{
			Title: title,
			Type:  store.CountdownType(cdType),
			Date:  date.UnixMilli(),
			Note:  note,
		})
		if err != nil {
			return fmt.Errorf("failed to create countdown: %w", err)
		}

		fmt.Println("Countdown created successfully:")
		return printJSON(countdown)
	},
}

var countdownListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events with days remaining or elapsed",
	RunE: func(cmd *cobra.Command, args []string) error {
		cdType, _ := cmd.Flags().GetString("type")

		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		var countdowns []store.Countdown
		if cdType != "" {
			countdowns, err = s.ListCountdownsByType(cmd.Context(), store.CountdownType(cdType))
		} else {
			countdowns, err = s.ListCountdowns(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to list countdowns: %w", err)
		}
		if len(countdowns) == 0 {
			fmt.Println("No countdowns found.")
			return nil
		}

		now := time.Now()
		for _, c := range countdowns {
			days := c.DaysFromToday(now)
			when := time.UnixMilli(c.Date).Local().Format("2006-01-02")
			switch {
			case days > 0:
				fmt.Printf("%s  %s  in %d days  (%s)\n", c.ID, c.Title, days, when)
			case days < 0:
				fmt.Printf("%s  %s  %d days ago  (%s)\n", c.ID, c.Title, -days, when)
			default:
				fmt.Printf("%s  %s  today  (%s)\n", c.ID, c.Title, when)
			}
		}
		return nil
	},
}

var countdownDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an event by its ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer s.Close()

		if err := s.DeleteCountdown(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, store.ErrCountdownNotFound) {
				fmt.Printf("Countdown with ID %s not found.\n", args[0])
				return nil
			}
			return fmt.Errorf("failed to delete countdown: %w", err)
		}
		fmt.Printf("Countdown with ID %s deleted successfully.\n", args[0])
		return nil
	},
}

func initCountdownsCmd() {
	countdownCreateCmd.Flags().StringP("title", "t", "", "Event title (required)")
	countdownCreateCmd.MarkFlagRequired("title")
	countdownCreateCmd.Flags().String("type", "countdown", "Event type: countdown or anniversary")
	countdownCreateCmd.Flags().StringP("date", "d", "", "Target date as YYYY-MM-DD (required)")
	countdownCreateCmd.MarkFlagRequired("date")
	countdownCreateCmd.Flags().StringP("note", "n", "", "Optional free-text remark")

	countdownListCmd.Flags().StringP("type", "t", "", "Filter by type: countdown or anniversary")

	countdownsCmd.AddCommand(countdownCreateCmd, countdownListCmd, countdownDeleteCmd)
}
