package main

import "github.com/kirilengovski/snowflake-oauth-test/internal/cli"

func main() {
	cli.Execute()
}
