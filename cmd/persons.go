package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/person"
	"github.com/opticshield/opticshield/internal/presentation"
	"github.com/opticshield/opticshield/internal/registry"
)

// withRegistry runs fn with a configured registry and debug logging.
func withRegistry(fn func(ctx context.Context, reg registry.Registry) error) error {
	stopLogging := startLogging()
	defer stopLogging()

	c, err := newClients()
	if err != nil {
		return err
	}
	defer c.close()
	return fn(context.Background(), c.registry)
}

var personsListCmd = &cobra.Command{
	Use:   "persons:list",
	Short: "List all persons in the registry",
	Long: `List every person in the registry as JSON.

Images are summarised as image_mime and image_bytes.

Examples:
  # List all persons
  opticshield persons:list

  # Against another registry
  opticshield persons:list --base-url http://registry.local:5000

  # Names of blacklisted persons
  opticshield persons:list | jq -r '.[] | select(.flag == "blacklist") | .name'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, reg registry.Registry) error {
			persons, err := reg.List(ctx)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatPersons(presentation.FromPersons(persons))
		})
	},
}

var addOpts struct {
	name     string
	personID string
	flag     string
	metadata string
	image    string
}

var personsAddCmd = &cobra.Command{
	Use:   "persons:add",
	Short: "Add a person to the registry",
	Long: `Add a person to the registry and print the created record as JSON.

Required inputs:
  --name (-n): Display name
  --person-id (-i): Client-side identifier

An --image that cannot be read or encoded is reported on stderr and the
record is created without one.

Examples:
  # Add a whitelisted person
  opticshield persons:add -n Alice -i A1

  # Add to the watchlist with a photo and a note
  opticshield persons:add -n Bob -i B7 --flag watchlist --image bob.jpg --metadata "night shift"`,
	Args: cobra.NoArgs,
	RunE: runPersonsAdd,
}

func runPersonsAdd(cmd *cobra.Command, args []string) error {
	c, err := person.ParseClassification(addOpts.flag)
	if err != nil {
		return err
	}
	draft := person.NewDraft()
	draft.Name = addOpts.name
	draft.PersonID = addOpts.personID
	draft.Classification = c
	draft.Metadata = addOpts.metadata
	if draft.MissingRequired() {
		return errors.New("--name and --person-id are required")
	}

	return withRegistry(func(ctx context.Context, reg registry.Registry) error {
		if addOpts.image != "" {
			uri, err := newEncoder().Encode(addOpts.image)
			if err != nil {
				// The record is still created, without an image.
				log.Warn(log.CatEncoder, "image skipped", "path", addOpts.image, "error", err)
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: image skipped: %v\n", err)
			} else {
				draft.ImagePath = addOpts.image
				draft.Image = uri
			}
		}
		created, err := reg.Create(ctx, registry.RequestFromDraft(draft))
		if err != nil {
			return err
		}
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatPerson(presentation.FromPerson(created))
	})
}

// findPerson looks id up in a fresh snapshot.
func findPerson(ctx context.Context, reg registry.Registry, id string) (person.Person, error) {
	persons, err := reg.List(ctx)
	if err != nil {
		return person.Person{}, err
	}
	for _, p := range persons {
		if p.ID == id {
			return p, nil
		}
	}
	return person.Person{}, fmt.Errorf("person %s not found", id)
}

var personsFlagCmd = &cobra.Command{
	Use:   "persons:flag <id>",
	Short: "Move a person to the next classification",
	Long: `Advance a person's classification one step along
whitelist -> blacklist -> watchlist -> whitelist and print the record as the
registry returns it afterwards.

Examples:
  opticshield persons:flag 65f1c2a9e4b0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, reg registry.Registry) error {
			p, err := findPerson(ctx, reg, args[0])
			if err != nil {
				return err
			}
			next := p.Classification.Next()
			if err := reg.UpdateClassification(ctx, p.ID, next); err != nil {
				return err
			}
			updated, err := findPerson(ctx, reg, p.ID)
			if err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatPerson(presentation.FromPerson(updated))
		})
	},
}

var deleteYes bool

var personsDeleteCmd = &cobra.Command{
	Use:   "persons:delete <id>",
	Short: "Remove a person from the registry",
	Long: `Remove a person from the registry. Asks for confirmation unless --yes is given.

Examples:
  opticshield persons:delete 65f1c2a9e4b0
  opticshield persons:delete 65f1c2a9e4b0 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		return withRegistry(func(ctx context.Context, reg registry.Registry) error {
			if !deleteYes {
				p, err := findPerson(ctx, reg, id)
				if err != nil {
					return err
				}
				if !confirm(cmd, fmt.Sprintf("Delete %s (%s)? This cannot be undone. [y/N] ", p.Name, p.ID)) {
					return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(map[string]string{"cancelled": id})
				}
			}
			if err := reg.Remove(ctx, id); err != nil {
				return err
			}
			return presentation.NewFormatter(cmd.OutOrStdout()).FormatResult(map[string]string{"deleted": id})
		})
	},
}

// confirm prompts on stderr and reads one answer from stdin.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func init() {
	personsAddCmd.Flags().StringVarP(&addOpts.name, "name", "n", "", "Display name (required)")
	personsAddCmd.Flags().StringVarP(&addOpts.personID, "person-id", "i", "", "Client-side person identifier (required)")
	personsAddCmd.Flags().StringVar(&addOpts.flag, "flag", "whitelist", "Classification: whitelist, blacklist or watchlist")
	personsAddCmd.Flags().StringVar(&addOpts.metadata, "metadata", "", "Free-form annotation")
	personsAddCmd.Flags().StringVar(&addOpts.image, "image", "", "Photo to embed as a data URI")

	personsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(personsListCmd, personsAddCmd, personsFlagCmd, personsDeleteCmd)
}
