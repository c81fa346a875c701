package version

// Version is the official semantic version of the casper node.
const Version = "0.1.0"
