// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/optakt/block-edge/service/subscriber"
)

// Messages returned by the plain text endpoints.
const (
	ReadyMessage = "Ready for requests!"
	StartMessage = "Starting block-edge"
	StopMessage  = "Stopping block-edge"
)

// Subscription is the block event subscription whose state is exposed.
type Subscription interface {
	Status() subscriber.Status
	Attempts() uint64
	Registrations() int
	Stop(ctx context.Context) error
}

// Response is the body of the status endpoint.
type Response struct {
	Status        string `json:"status"`
	Attempts      uint64 `json:"attempts"`
	Registrations int    `json:"registrations"`
}

type Controller struct {
	sub     Subscription
	timeout time.Duration
}

func NewController(sub Subscription, timeout time.Duration) *Controller {
	c := Controller{
		sub:     sub,
		timeout: timeout,
	}
	return &c
}

func (c *Controller) Ready(ctx echo.Context) error {
	return ctx.String(http.StatusOK, ReadyMessage)
}

func (c *Controller) Start(ctx echo.Context) error {
	return ctx.String(http.StatusOK, StartMessage)
}

func (c *Controller) Status(ctx echo.Context) error {
	res := Response{
		Status:        c.sub.Status().String(),
		Attempts:      c.sub.Attempts(),
		Registrations: c.sub.Registrations(),
	}
	return ctx.JSON(http.StatusOK, res)
}

// Stop ends the block event subscription and unregisters its handlers.
func (c *Controller) Stop(ctx echo.Context) error {

	stop, cancel := context.WithTimeout(ctx.Request().Context(), c.timeout)
	defer cancel()

	err := c.sub.Stop(stop)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return ctx.String(http.StatusOK, StopMessage)
}
