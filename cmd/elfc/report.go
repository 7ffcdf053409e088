package main

import (
	"io"

	"github.com/segmentio/encoding/json"

	"github.com/tangzhangming/elfc/internal/codegen"
)

// checkReport check -json 的输出
type checkReport struct {
	File       string          `json:"file"`
	Routines   []routineReport `json:"routines"`
	Globals    []globalReport  `json:"globals"`
	GlobalSize int             `json:"global_words"`
	Externals  []string        `json:"externals"`
	Labels     int             `json:"labels"`
}

type routineReport struct {
	Name         string `json:"name"`
	Entry        bool   `json:"entry,omitempty"`
	FrameSize    int    `json:"frame_words"`
	Instructions int    `json:"instructions"`
}

type globalReport struct {
	Name  string `json:"name"`
	Shift int    `json:"shift"`
	Words int    `json:"words"`
}

func newCheckReport(file string, prog *codegen.Program) *checkReport {
	r := &checkReport{
		File:       file,
		GlobalSize: prog.GlobalSize,
		Labels:     prog.Labels,
		Routines:   make([]routineReport, 0, len(prog.Routines)),
		Globals:    make([]globalReport, 0, len(prog.Globals)),
		Externals:  make([]string, 0, len(prog.Externals)),
	}
	for _, rt := range prog.Routines {
		r.Routines = append(r.Routines, routineReport{
			Name:         rt.Name,
			Entry:        rt.Entry,
			FrameSize:    rt.FrameSize,
			Instructions: len(rt.Code),
		})
	}
	for _, v := range prog.Globals {
		r.Globals = append(r.Globals, globalReport{Name: v.Name, Shift: v.Shift, Words: v.Words()})
	}
	for _, fn := range prog.Externals {
		r.Externals = append(r.Externals, fn.Name)
	}
	return r
}

// writeJSON 以缩进格式写出报告
func (r *checkReport) writeJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
