/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.mdcatapult.io/informatics/software-engineering/message-entities/lib/store"
)

type HttpError struct {
	code int
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		error: err,
	}
}

type contentType int

const (
	contentTypePlain contentType = iota
	contentTypeHTML
)

var allowedContentTypeEnumMap = map[string]contentType{
	"text/plain": contentTypePlain,
	"text/html":  contentTypeHTML,
}

type server struct {
	controller controller
}

func (s server) RegisterRoutes(r *gin.Engine) {
	r.POST("/analyze", validateBody, s.Analyze)
	r.POST("/messages", validateBody, s.Messages)
	r.GET("/users/:userId/history", s.History)
	r.GET("/entities", s.Entities)
	r.GET("/healthz", s.Health)
}

func (s server) Analyze(c *gin.Context) {
	contentType, ok := allowedContentTypeEnumMap[c.ContentType()]
	if !ok {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("invalid content type - must be text/html or text/plain")))
		return
	}

	entities, err := s.controller.Analyze(c.Request.Context(), c.Request.Body, contentType)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

func (s server) Messages(c *gin.Context) {
	var m store.Message
	if err := c.ShouldBindJSON(&m); err != nil {
		handleError(c, NewHttpError(http.StatusBadRequest, err))
		return
	}

	res, err := s.controller.ProcessMessage(c.Request.Context(), &m)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s server) History(c *gin.Context) {
	limit := s.controller.historyLimit
	if l, ok := c.GetQuery("limit"); ok {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 {
			handleError(c, NewHttpError(http.StatusBadRequest, errors.New("limit must be a positive integer")))
			return
		}
	}

	res, err := s.controller.History(c.Request.Context(), c.Param("userId"), limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (s server) Entities(c *gin.Context) {
	ids, ok := c.GetQueryArray("messageId")
	if !ok {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("you must set at least one messageId query parameter")))
		return
	}

	records, err := s.controller.Entities(c.Request.Context(), ids)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entities": records})
}

func (s server) Health(c *gin.Context) {
	if !s.controller.store.Ready() {
		abort(c, http.StatusServiceUnavailable, errors.New("store is not ready"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func validateBody(c *gin.Context) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("request body missing")))
	} else if _, err := c.Request.Body.Read(nil); err == io.EOF {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("request body missing")))
	} else {
		c.Next()
	}
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, http.StatusInternalServerError, errors.New("abort called on nil error"))
		return
	}
	var httpErr HttpError
	switch {
	case errors.As(err, &httpErr):
		abort(c, httpErr.code, httpErr.error)
	case errors.Is(err, store.ErrInvalidMessage):
		abort(c, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrMessageNotFound):
		abort(c, http.StatusNotFound, err)
	default:
		abort(c, http.StatusInternalServerError, err)
	}
}

func abort(c *gin.Context, code int, err error) {
	switch {
	case code <= 503:
		c.JSON(code, map[string]interface{}{
			"status":  code,
			"message": err.Error(),
		})
		c.Abort()
	default:
		_ = c.AbortWithError(code, err)
	}
}
