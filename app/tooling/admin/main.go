// This program performs administrative tasks against a running service.
package main

import "github.com/basecamplabs/basecamp/app/tooling/admin/cmd"

func main() {
	cmd.Execute()
}
