/*
Package casper implements the packet-handling state machine of a casper
node.

Decoded peer packets are routed by a PacketHandler to the handler matching
the node's current lifecycle phase. A node starts in one of three phases
depending on its role: GenesisValidator (it signs genesis candidates),
Standalone (it runs the genesis ceremony), or Bootstrap (it is catching up
and asking peers for an approved block). All three terminate in the
ApprovedBlockReceived phase, where the node fully participates: it accepts
blocks into its Casper instance, answers block and fork-choice-tip
requests, and serves its approved block to bootstrapping peers.

The active handler lives in a HandlerCell with atomic semantics. The
dispatcher performs the GenesisValidator and Bootstrap transitions when a
valid ApprovedBlock arrives; the Standalone transition is performed by the
approval loop once the genesis ceremony has gathered enough signatures.
*/
package casper
