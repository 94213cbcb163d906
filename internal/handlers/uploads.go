// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"pressroom/internal/render"
)

// presignRequest is the body of POST /uploads/presign.
type presignRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// PresignUpload handles POST /uploads/presign. The client PUTs the file to
// uploadUrl and then references key or fileUrl as an attachment file_url.
func (a *API) PresignUpload(w http.ResponseWriter, r *http.Request) {
	if a.objects == nil {
		render.Error(w, http.StatusServiceUnavailable, render.KindUnavailable, "File storage is not configured.")
		return
	}

	var req presignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		validationError(w, err.Error())
		return
	}
	if msg := validateUpload(req.FileName, req.ContentType); msg != "" {
		validationError(w, msg)
		return
	}

	upload, err := a.objects.PresignUpload(r.Context(), req.FileName, req.ContentType, a.uploadURLTTL)
	if err != nil {
		storeError(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, upload)
}
