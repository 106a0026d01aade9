package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage recipe images",
}

var imageUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an image and print the URL to use as a recipe's image_url",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := uploadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

func init() {
	imageCmd.AddCommand(imageUploadCmd)
}
