package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DavidAtikpo/irata-sub002/internal/modules/checklist"
)

func newFieldsCommand() *cobra.Command {
	var hidden bool

	cmd := &cobra.Command{
		Use:   "fields [type]",
		Short: "List the checklist paths of an equipment type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listTypes(cmd)
			}
			eqType, err := checklist.ParseEquipmentType(args[0])
			if err != nil {
				return fmt.Errorf("%w (known: %s)", err, knownTypes())
			}
			tmpl := checklist.MustTemplate(eqType)
			rows := [][]string{{string(checklist.HistoryCommentPath), "", "yes"}}
			for _, p := range tmpl.Paths() {
				spec, _ := tmpl.Leaf(p)
				if !spec.Visible && !hidden {
					continue
				}
				rows = append(rows, []string{string(p), string(spec.Default), yesNo(spec.Visible)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d sections)\n", tmpl.Title, tmpl.SectionCount())
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Path", "Default", "Visible"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Include controls hidden for this type")
	return cmd
}

func listTypes(cmd *cobra.Command) error {
	rows := make([][]string, 0, len(checklist.Types()))
	for _, t := range checklist.Types() {
		tmpl := checklist.MustTemplate(t)
		rows = append(rows, []string{string(t), tmpl.Title, fmt.Sprint(tmpl.SectionCount()), fmt.Sprint(len(tmpl.Paths()))})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Type", "Title", "Sections", "Controls"}, rows))
	return nil
}

func knownTypes() string {
	names := make([]string, 0, len(checklist.Types()))
	for _, t := range checklist.Types() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
