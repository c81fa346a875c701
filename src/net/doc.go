/*
Package net implements the transports over which casper packets travel.

Packets are one-way: a node streams a Blob (its own identity plus a packet)
to a set of peers, and consumes incoming packets from the Consumer channel.
Request/response correlation, when needed, happens at the protocol layer by
echoing identifiers, never at the transport layer.

Two transports are provided. InmemTransport routes blobs between transports
in the same process and is used in tests and local setups. TCPTransport
frames blobs over pooled TCP connections.
*/
package net
