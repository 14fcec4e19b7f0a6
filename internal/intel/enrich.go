package intel

import "context"

// The enrichment layer attaches basenames to result batches. It is kept
// apart from the algorithms so those stay pure; a failed or missing
// lookup simply leaves the name field unset and never fails the query.

// lookupNames batch-resolves addresses to verified basenames. Returns
// nil when no name source is wired.
func (s *Service) lookupNames(ctx context.Context, addrs []string) map[string]string {
	if s.names == nil || len(addrs) == 0 {
		return nil
	}
	return s.names.LookupAddresses(ctx, addrs)
}

func enrichExperts(items []Expert, names map[string]string) {
	for i := range items {
		items[i].Name = names[items[i].Address]
	}
}

func enrichBridgeAgents(items []BridgeAgent, names map[string]string) {
	for i := range items {
		items[i].Name = names[items[i].Address]
	}
}

func enrichConsensus(items []ConsensusPost, names map[string]string) {
	for i := range items {
		items[i].AuthorName = names[items[i].Author]
	}
}

func enrichCollaborators(items []Collaborator, names map[string]string) {
	for i := range items {
		items[i].Name = names[items[i].Address]
	}
}

func enrichRankedAgents(items []RankedAgent, names map[string]string) {
	for i := range items {
		items[i].Name = names[items[i].Address]
	}
}

func enrichEmergingAgents(items []EmergingAgent, names map[string]string) {
	for i := range items {
		items[i].Name = names[items[i].Address]
	}
}

func expertAddresses(items []Expert) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Address
	}
	return out
}

func bridgeAddresses(items []BridgeAgent) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Address
	}
	return out
}

func consensusAddresses(items []ConsensusPost) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Author
	}
	return out
}

func collaboratorAddresses(items []Collaborator) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Address
	}
	return out
}

func rankedAddresses(items []RankedAgent) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Address
	}
	return out
}

func emergingAddresses(items []EmergingAgent) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Address
	}
	return out
}
