package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/spf13/cobra"
)

var renderPath string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the rendered whitelist report",
	Run:   summaryRun,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&renderPath, "path", "r", "", "Realm page to render.")
}

func summaryRun(cmd *cobra.Command, args []string) {
	target := fmt.Sprintf("%s/v1/realm/render", url)
	if renderPath != "" {
		target = fmt.Sprintf("%s/%s", target, renderPath)
	}

	resp, err := http.Get(target)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Print(string(doc))
}
