package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/attendly/attendly-api/internal/models"
)

// ProposalRepository stages OCR import proposals in Redis until the user
// confirms or the TTL expires. Keys carry the owner so one user can never
// confirm another's proposal.
type ProposalRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProposalRepository constructs the repository.
func NewProposalRepository(client *redis.Client, ttl time.Duration) *ProposalRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ProposalRepository{client: client, ttl: ttl}
}

func proposalKey(ownerID, id string) string {
	return fmt.Sprintf("import:proposal:%s:%s", ownerID, id)
}

// Save stores the proposal with the configured TTL.
func (r *ProposalRepository) Save(ctx context.Context, proposal *models.ImportProposal) error {
	payload, err := json.Marshal(proposal)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}
	key := proposalKey(proposal.OwnerID, proposal.ID)
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("store proposal %s: %w", key, err)
	}
	return nil
}

// Find loads an owner's proposal; ErrNotFound when missing or expired.
func (r *ProposalRepository) Find(ctx context.Context, ownerID, id string) (*models.ImportProposal, error) {
	raw, err := r.client.Get(ctx, proposalKey(ownerID, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load proposal: %w", err)
	}
	var proposal models.ImportProposal
	if err := json.Unmarshal(raw, &proposal); err != nil {
		return nil, fmt.Errorf("unmarshal proposal: %w", err)
	}
	return &proposal, nil
}

// Delete discards a staged proposal.
func (r *ProposalRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := r.client.Del(ctx, proposalKey(ownerID, id)).Err(); err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	return nil
}
