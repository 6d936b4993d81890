package internal

// Version is the paperpush release version.
const Version = "0.3.0"
