package chain

// registryABI describes the six events the engine consumes from the
// social registry contract. Addresses are indexed so they land in
// topics; CIDs and community slugs are plain data fields.
const registryABI = `[
  {"type":"event","name":"ContentPublished","inputs":[
    {"name":"author","type":"address","indexed":true},
    {"name":"cid","type":"string","indexed":false},
    {"name":"community","type":"string","indexed":false},
    {"name":"contentType","type":"uint8","indexed":false}]},
  {"type":"event","name":"AttestationCreated","inputs":[
    {"name":"attester","type":"address","indexed":true},
    {"name":"subject","type":"address","indexed":true},
    {"name":"reason","type":"string","indexed":false},
    {"name":"timestamp","type":"uint256","indexed":false}]},
  {"type":"event","name":"AttestationRevoked","inputs":[
    {"name":"attester","type":"address","indexed":true},
    {"name":"subject","type":"address","indexed":true}]},
  {"type":"event","name":"VoteCast","inputs":[
    {"name":"voter","type":"address","indexed":true},
    {"name":"cid","type":"string","indexed":false},
    {"name":"voteType","type":"uint8","indexed":false}]},
  {"type":"event","name":"Followed","inputs":[
    {"name":"follower","type":"address","indexed":true},
    {"name":"followed","type":"address","indexed":true}]},
  {"type":"event","name":"Registered","inputs":[
    {"name":"agent","type":"address","indexed":true},
    {"name":"agentType","type":"uint8","indexed":false}]}
]`
