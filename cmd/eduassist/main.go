// Command eduassist は学習支援APIサーバーを起動する。
//
// 使い方:
//
//	eduassist [serve|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/eduassist/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
