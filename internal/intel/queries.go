package intel

// GraphQL templates for the indexed source. Selection sets match the
// record shapes in internal/subgraph; paging is driven by $first/$skip.

const contentFields = `id author { id } community score upvotes downvotes isActive parent { id } tags timestamp`

const queryContentsByCommunity = `query($community: String!, $first: Int!, $skip: Int!) {
  contents(where: { community: $community, isActive: true }, orderBy: timestamp, orderDirection: desc, first: $first, skip: $skip) { ` + contentFields + ` }
}`

const queryContentsByAuthor = `query($author: String!, $first: Int!, $skip: Int!) {
  contents(where: { author: $author, isActive: true }, orderBy: timestamp, orderDirection: desc, first: $first, skip: $skip) { ` + contentFields + ` }
}`

const queryContentsAll = `query($first: Int!, $skip: Int!) {
  contents(where: { isActive: true }, orderBy: timestamp, orderDirection: desc, first: $first, skip: $skip) { ` + contentFields + ` }
}`

const queryContentsByIDs = `query($ids: [String!]!, $first: Int!, $skip: Int!) {
  contents(where: { id_in: $ids }, first: $first, skip: $skip) { ` + contentFields + ` }
}`

const queryAttestationsActive = `query($first: Int!, $skip: Int!) {
  attestations(where: { active: true }, orderBy: timestamp, orderDirection: asc, first: $first, skip: $skip) {
    attester { id } subject { id } active reason timestamp
  }
}`

const queryAttestationsBySubject = `query($subject: String!, $first: Int!, $skip: Int!) {
  attestations(where: { subject: $subject, active: true }, orderBy: timestamp, orderDirection: asc, first: $first, skip: $skip) {
    attester { id } subject { id } active reason timestamp
  }
}`

const queryVotingRelationsAll = `query($first: Int!, $skip: Int!) {
  votingRelations(first: $first, skip: $skip) {
    voter { id } author { id } upvotes downvotes
  }
}`

const queryVotingRelationsByAuthor = `query($author: String!, $first: Int!, $skip: Int!) {
  votingRelations(where: { author: $author }, first: $first, skip: $skip) {
    voter { id } author { id } upvotes downvotes
  }
}`

const queryVotingRelationsByAgent = `query($agent: String!, $first: Int!, $skip: Int!) {
  votingRelations(where: { or: [{ voter: $agent }, { author: $agent }] }, first: $first, skip: $skip) {
    voter { id } author { id } upvotes downvotes
  }
}`

const agentFields = `id agentType registeredAt postCount followerCount upvotesReceived downvotesReceived attestationCount communitiesActive`

const queryAgentByID = `query($id: ID!) {
  agent(id: $id) { ` + agentFields + ` }
}`

const queryAgentsRegisteredSince = `query($cutoff: BigInt!, $first: Int!, $skip: Int!) {
  agents(where: { registeredAt_gte: $cutoff }, orderBy: registeredAt, orderDirection: desc, first: $first, skip: $skip) { ` + agentFields + ` }
}`

const queryCommunityByID = `query($id: ID!) {
  community(id: $id) { id totalPosts uniqueAuthors totalScore lastPostAt }
}`

const queryCommunitiesAll = `query($first: Int!, $skip: Int!) {
  communities(orderBy: id, orderDirection: asc, first: $first, skip: $skip) {
    id totalPosts uniqueAuthors totalScore lastPostAt
  }
}`

const queryCommunityDaysSince = `query($cutoff: BigInt!, $first: Int!, $skip: Int!) {
  communityDaySnapshots(where: { dayTimestamp_gte: $cutoff }, orderBy: dayTimestamp, orderDirection: asc, first: $first, skip: $skip) {
    community dayTimestamp postsInPeriod votesInPeriod
  }
}`

const queryCitationsAll = `query($first: Int!, $skip: Int!) {
  citations(orderBy: timestamp, orderDirection: asc, first: $first, skip: $skip) {
    source { id } target { id } timestamp
  }
}`

const queryCitationCounts = `query($first: Int!, $skip: Int!) {
  citationCounts(orderBy: inboundCount, orderDirection: desc, first: $first, skip: $skip) {
    id inboundCount
  }
}`
