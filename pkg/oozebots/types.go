package oozebots

import "oozebots/internal/model"

// GenerationDiagnostics summarizes one recorded generation.
type GenerationDiagnostics = model.GenerationDiagnostics
