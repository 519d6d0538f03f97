// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package rest exposes color map generation as a small JSON API, plus an
// embedded single-page previewer. Rendering happens client-side; the server
// only computes tables.
package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/divmap/internal/cmap"
	"github.com/mlnoga/divmap/web"
)

func Serve() {
	r := gin.Default()
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET ("/ping",  getPing)
			v1.POST("/cmap",  postCmap)
			v1.POST("/cmaps", postCmaps)
		}
	}
	ctx:=cmap.NewContext(gin.DefaultWriter)
	fmt.Fprintf(ctx.Log, "Serving color maps with %d threads and %d MB physical memory\n", ctx.MaxThreads, ctx.MemoryMB)
	r.Run() // listen and serve on 0.0.0.0:8080
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "pong",
	})
}

// Maps validation failures to 400 and everything else to 500
func errStatus(err error) int {
	if errors.Is(err, cmap.ErrInvalidArgument) || errors.Is(err, cmap.ErrInvalidConfig) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Builds a single color table from a JSON spec; missing entries take defaults
func postCmap(c *gin.Context) {
	spec:=cmap.NewColorMapSpecDefault()
	if err:=c.ShouldBind(spec); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	table, err:=spec.Generate()
	if err!=nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"spec": spec, "table": table})
}

type postCmapsArgs struct {
	Specs []*cmap.ColorMapSpec `json:"specs"`
}

// Builds many independent color tables in parallel
func postCmaps(c *gin.Context) {
	var args postCmapsArgs
	if err:=c.ShouldBind(&args); err!=nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx:=cmap.NewContext(gin.DefaultWriter)
	tables, err:=cmap.GenerateAll(args.Specs, ctx)
	if err!=nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}
