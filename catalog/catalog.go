/*
Package catalog holds the read-only seed data: quests, rewards, guides,
and the local-seller directory.

PURPOSE:
  The quest and reward catalogs are externally supplied, not created
  through the API. This package carries the built-in defaults, loads
  operator overrides from a YAML file, and seeds an empty document at
  startup. Seeding only fills collections that are empty, so an existing
  document is never clobbered.

FILE FORMAT (YAML):
  quests:
    - id: first-swap
      description: Complete your first plant swap
      points: 50
  rewards:
    - id: tote-bag
      description: PlantSwap tote bag
      cost: 30

SEE ALSO:
  - document/types.go: Quest/Reward/Guide/Seller records
  - cmd/server: Loads and seeds at startup
*/
package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plantswap/marketplace/document"
)

// Catalog is the full seed data set.
type Catalog struct {
	Quests  []document.Quest  `yaml:"quests"`
	Rewards []document.Reward `yaml:"rewards"`
	Guides  []document.Guide  `yaml:"guides"`
	Sellers []document.Seller `yaml:"sellers"`
}

// Default returns the built-in catalog.
func Default() Catalog {
	return Catalog{
		Quests: []document.Quest{
			{ID: "first-swap", Description: "Complete your first plant swap", Points: 50},
			{ID: "green-thumb", Description: "Post five listings", Points: 100},
			{ID: "community-helper", Description: "Answer a question in the community", Points: 25},
			{ID: "propagation-pro", Description: "Share a propagation success story", Points: 75},
		},
		Rewards: []document.Reward{
			{ID: "tote-bag", Description: "PlantSwap tote bag", Cost: 30},
			{ID: "ceramic-pot", Description: "Handmade ceramic pot", Cost: 120},
			{ID: "seed-pack", Description: "Heirloom seed starter pack", Cost: 60},
		},
		Guides: []document.Guide{
			{ID: "watering-basics", Title: "Watering basics", Summary: "How often to water common houseplants."},
			{ID: "repotting", Title: "Repotting without stress", Summary: "When and how to repot."},
			{ID: "pest-control", Title: "Natural pest control", Summary: "Dealing with spider mites and gnats."},
		},
		Sellers: []document.Seller{
			{ID: "rooted", Name: "Rooted Nursery", Location: "Portland, OR", Specialty: "Tropicals"},
			{ID: "leaf-and-stem", Name: "Leaf & Stem", Location: "Austin, TX", Specialty: "Succulents"},
		},
	}
}

// LoadFile reads a catalog from a YAML file and validates it.
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Validate checks catalog entries for missing IDs and negative points.
func (c Catalog) Validate() error {
	for _, q := range c.Quests {
		if q.ID == "" {
			return fmt.Errorf("quest with empty id")
		}
		if q.Points < 0 {
			return fmt.Errorf("quest %q: negative points", q.ID)
		}
	}
	for _, r := range c.Rewards {
		if r.ID == "" {
			return fmt.Errorf("reward with empty id")
		}
		if r.Cost < 0 {
			return fmt.Errorf("reward %q: negative cost", r.ID)
		}
	}
	return nil
}

// Seed fills the empty catalog collections of the stored document. Runs
// as one transaction; collections that already hold entries are left
// untouched.
func (c Catalog) Seed(ctx context.Context, store document.Store) error {
	return store.Transact(ctx, func(doc *document.Document) error {
		if len(doc.Quests) == 0 {
			doc.Quests = append(doc.Quests, c.Quests...)
		}
		if len(doc.Rewards) == 0 {
			doc.Rewards = append(doc.Rewards, c.Rewards...)
		}
		if len(doc.Guides) == 0 {
			doc.Guides = append(doc.Guides, c.Guides...)
		}
		if len(doc.Sellers) == 0 {
			doc.Sellers = append(doc.Sellers, c.Sellers...)
		}
		return nil
	})
}
