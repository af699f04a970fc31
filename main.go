// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/metageo/metageo/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
