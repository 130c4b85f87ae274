package mattermost

import "fmt"

// GetUser fetches a single user by ID.
func (c *Client) GetUser(userID string) (*User, error) {
	var user User
	if err := c.getJSON("/users/"+userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetChannel fetches channel metadata.
func (c *Client) GetChannel(channelID string) (*Channel, error) {
	var channel Channel
	if err := c.getJSON("/channels/"+channelID, &channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// GetFileInfo fetches attachment metadata for one file ID.
func (c *Client) GetFileInfo(fileID string) (*FileInfo, error) {
	var info FileInfo
	if err := c.getJSON(fmt.Sprintf("/files/%s/info", fileID), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// FileURL returns the direct download URL for a file ID.
func (c *Client) FileURL(fileID string) string {
	return fmt.Sprintf("%s/files/%s", c.baseURL, fileID)
}
