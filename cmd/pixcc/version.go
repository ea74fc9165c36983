package main

// BuildNumber is set at build time with -ldflags "-X main.BuildNumber=...".
var BuildNumber = "dev"
